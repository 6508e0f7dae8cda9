package domain

// Outcome separates healthy from degraded-but-available results. OK is false
// only when the operation could not deliver what it promised.
type Outcome struct {
	OK       bool   `json:"ok"`
	Degraded bool   `json:"degraded"`
	Detail   string `json:"detail,omitempty"`
}

func Healthy(detail string) Outcome {
	return Outcome{OK: true, Detail: detail}
}

func Degraded(detail string) Outcome {
	return Outcome{OK: true, Degraded: true, Detail: detail}
}

func Failed(detail string) Outcome {
	return Outcome{OK: false, Degraded: true, Detail: detail}
}

func (o Outcome) Status() string {
	switch {
	case !o.OK:
		return "failed"
	case o.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}
