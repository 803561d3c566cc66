package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read strategy file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML on top of Default() and validates the result.
// Omitted sections keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode strategy yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewDecisionSnapshot creates a snapshot for audit.
// Without source YAML (built-in defaults) the effective config is marshalled instead.
func NewDecisionSnapshot(cfg *Config, yamlData []byte) (*contracts.DecisionSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(yamlData)) == 0 {
		yamlData, err = yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal strategy yaml: %w", err)
		}
	}

	return &contracts.DecisionSnapshot{
		ConfigHash: hash,
		StrategyID: cfg.Meta.StrategyID,
		Version:    cfg.Meta.Version,
		ConfigYAML: string(yamlData),
	}, nil
}

// LoadSnapshot loads path (or the defaults when empty) and pins it as a snapshot
func LoadSnapshot(path string) (*Config, *contracts.DecisionSnapshot, error) {
	cfg := Default()
	var data []byte
	if path != "" {
		var err error
		cfg, data, err = Load(path)
		if err != nil {
			return nil, nil, err
		}
	}

	snap, err := NewDecisionSnapshot(cfg, data)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot strategy: %w", err)
	}
	return cfg, snap, nil
}
