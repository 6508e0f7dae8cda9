package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"crop-yield-service/internal/config"
	ports "crop-yield-service/internal/core/ports/output"
)

var configMapGVR = schema.GroupVersionResource{
	Group:    "",
	Version:  "v1",
	Resource: "configmaps",
}

const managedByLabel = "app.kubernetes.io/managed-by"

type statusPublisher struct {
	client    dynamic.Interface
	enabled   bool
	namespace string
	name      string
	now       func() time.Time
}

// NewStatusPublisher writes compatibility status into a ConfigMap so cluster
// alerting can watch it. A disabled config yields a publisher that does nothing.
func NewStatusPublisher(cfg *config.KubernetesConfig) (ports.StatusPublisher, error) {
	if !cfg.Enabled {
		return &statusPublisher{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	return NewStatusPublisherForClient(client, cfg.Namespace, cfg.ConfigMapName), nil
}

// NewStatusPublisherForClient uses an existing dynamic client.
func NewStatusPublisherForClient(client dynamic.Interface, namespace, name string) ports.StatusPublisher {
	if namespace == "" {
		namespace = "default"
	}
	if name == "" {
		name = "crop-yield-model-status"
	}
	return &statusPublisher{
		client:    client,
		enabled:   true,
		namespace: namespace,
		name:      name,
		now:       time.Now,
	}
}

func (p *statusPublisher) Publish(ctx context.Context, status ports.CompatibilityStatus) error {
	if !p.enabled {
		return nil
	}
	data, err := p.buildData(status)
	if err != nil {
		return err
	}

	res := p.client.Resource(configMapGVR).Namespace(p.namespace)
	existing, err := res.Get(ctx, p.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		if _, err := res.Create(ctx, p.buildConfigMap(data), metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create status configmap: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get status configmap: %w", err)
	}

	if err := unstructured.SetNestedField(existing.Object, data, "data"); err != nil {
		return fmt.Errorf("set status configmap data: %w", err)
	}
	if _, err := res.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("update status configmap: %w", err)
	}
	return nil
}

func (p *statusPublisher) buildData(status ports.CompatibilityStatus) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"status":             status.Outcome.Status(),
		"detail":             status.Outcome.Detail,
		"fingerprint_digest": status.FingerprintDigest,
		"updated_at":         p.now().UTC().Format(time.RFC3339),
	}
	if status.Report != nil {
		report, err := json.Marshal(status.Report)
		if err != nil {
			return nil, fmt.Errorf("encode compatibility report: %w", err)
		}
		data["fallback_active"] = strconv.FormatBool(status.Report.FallbackActive)
		data["environment_drift"] = strconv.FormatBool(status.Report.EnvironmentDrift)
		data["compatible"] = strconv.Itoa(len(status.Report.Compatible))
		data["incompatible"] = strconv.Itoa(len(status.Report.Incompatible))
		data["missing"] = strconv.Itoa(len(status.Report.Missing))
		data["report.json"] = string(report)
	}
	return data, nil
}

func (p *statusPublisher) buildConfigMap(data map[string]interface{}) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "ConfigMap",
			"metadata": map[string]interface{}{
				"name":      p.name,
				"namespace": p.namespace,
				"labels": map[string]interface{}{
					managedByLabel: "crop-yield-service",
				},
			},
			"data": data,
		},
	}
}

var _ ports.StatusPublisher = (*statusPublisher)(nil)
