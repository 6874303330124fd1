package adapter

import (
	"io"
	"testing"

	"RetailSense/internal/config"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRegistryBuildsConfiguredAdapters(t *testing.T) {
	cfg := &config.Config{Collaborators: map[string]config.CollaboratorConfig{
		"forecast": {BaseURL: "http://forecast.local"},
		"segment":  {BaseURL: "http://segment.local"},
		"classify": {BaseURL: "http://classify.local"},
	}}

	registry := NewCollaboratorRegistry(cfg, testLogger())

	if registry.Forecaster() == nil {
		t.Error("期望forecast适配器已初始化")
	}
	if registry.Segmenter() == nil {
		t.Error("期望segment适配器已初始化")
	}
	if registry.Classifier() == nil {
		t.Error("期望classify适配器已初始化")
	}
}

func TestRegistrySkipsUnconfiguredServices(t *testing.T) {
	// base_url留空即不启用；未知服务名忽略
	cfg := &config.Config{Collaborators: map[string]config.CollaboratorConfig{
		"forecast": {BaseURL: ""},
		"unknown":  {BaseURL: "http://unknown.local"},
	}}

	registry := NewCollaboratorRegistry(cfg, testLogger())

	if registry.Forecaster() != nil {
		t.Error("base_url为空时不应启用forecast")
	}
	if registry.Segmenter() != nil || registry.Classifier() != nil {
		t.Error("未配置的服务期望为nil")
	}
}

func TestRegistryEmptyConfig(t *testing.T) {
	registry := NewCollaboratorRegistry(&config.Config{}, testLogger())

	if registry.Forecaster() != nil || registry.Segmenter() != nil || registry.Classifier() != nil {
		t.Error("空配置期望全部为nil")
	}
}
