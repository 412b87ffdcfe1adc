package secretstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store with the stage semantics of the storage
// service. Every stage label is held by at most one version, and moving
// AWSCURRENT attaches AWSPREVIOUS to the version it left.
type Memory struct {
	mu      sync.Mutex
	secrets map[string]*memorySecret
	writes  int
}

type memorySecret struct {
	versions map[string]*memoryVersion
	order    []string
}

type memoryVersion struct {
	value  string
	stages []string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]*memorySecret)}
}

// CreateSecret seeds a secret with an initial AWSCURRENT version
func (m *Memory) CreateSecret(secretID, versionID, secretString string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.secrets[secretID]; exists {
		return fmt.Errorf("secret %s already exists", secretID)
	}
	m.secrets[secretID] = &memorySecret{
		versions: map[string]*memoryVersion{
			versionID: {value: secretString, stages: []string{StageCurrent}},
		},
		order: []string{versionID},
	}
	return nil
}

// WriteCount returns the number of PutSecretValue and UpdateVersionStage calls
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Versions returns the version ids of a secret in creation order
func (m *Memory) Versions(secretID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	secret, ok := m.secrets[secretID]
	if !ok {
		return nil
	}
	return append([]string(nil), secret.order...)
}

// GetSecretValue implements Store
func (m *Memory) GetSecretValue(_ context.Context, secretID string, sel VersionSelector) (SecretValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	notFound := &NotFoundError{SecretID: secretID, VersionID: sel.VersionID, Stage: sel.Stage}

	secret, ok := m.secrets[secretID]
	if !ok {
		return SecretValue{}, notFound
	}

	versionID := sel.VersionID
	if versionID == "" {
		stage := sel.Stage
		if stage == "" {
			stage = StageCurrent
		}
		versionID = secret.holder(stage)
	}

	version, ok := secret.versions[versionID]
	if !ok {
		return SecretValue{}, notFound
	}
	if sel.Stage != "" && !hasStage(version.stages, sel.Stage) {
		return SecretValue{}, notFound
	}

	return SecretValue{
		SecretString: version.value,
		VersionID:    versionID,
		Stages:       append([]string(nil), version.stages...),
	}, nil
}

// PutSecretValue implements Store. Repeating a put with the same token and
// value succeeds without change; a different value for an existing token fails.
func (m *Memory) PutSecretValue(_ context.Context, secretID, token, secretString string, stages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	secret, ok := m.secrets[secretID]
	if !ok {
		return &NotFoundError{SecretID: secretID}
	}
	if token == "" {
		return fmt.Errorf("client request token is required")
	}

	if existing, ok := secret.versions[token]; ok {
		if existing.value == secretString {
			return nil
		}
		return fmt.Errorf("version %s of secret %s already exists with a different value", token, secretID)
	}

	secret.versions[token] = &memoryVersion{value: secretString}
	secret.order = append(secret.order, token)
	for _, stage := range stages {
		secret.move(stage, token)
	}
	return nil
}

// DescribeSecret implements Store
func (m *Memory) DescribeSecret(_ context.Context, secretID string) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	secret, ok := m.secrets[secretID]
	if !ok {
		return nil, &NotFoundError{SecretID: secretID}
	}

	out := make(map[string][]string, len(secret.versions))
	for id, v := range secret.versions {
		out[id] = append([]string{}, v.stages...)
	}
	return out, nil
}

// UpdateVersionStage implements Store. The whole move happens under one lock.
func (m *Memory) UpdateVersionStage(_ context.Context, secretID, stage, moveTo, removeFrom string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	secret, ok := m.secrets[secretID]
	if !ok {
		return &NotFoundError{SecretID: secretID}
	}
	if _, ok := secret.versions[moveTo]; !ok {
		return &NotFoundError{SecretID: secretID, VersionID: moveTo}
	}

	holder := secret.holder(stage)
	if removeFrom != "" && removeFrom != holder {
		return fmt.Errorf("stage %s is not attached to version %s", stage, removeFrom)
	}
	if holder != "" && holder != moveTo && removeFrom != holder {
		return fmt.Errorf("stage %s is attached to version %s, which must be passed as the version to remove it from", stage, holder)
	}

	secret.move(stage, moveTo)
	return nil
}

// holder returns the version carrying stage, preferring creation order
func (s *memorySecret) holder(stage string) string {
	for _, id := range s.order {
		if hasStage(s.versions[id].stages, stage) {
			return id
		}
	}
	return ""
}

func (s *memorySecret) move(stage, to string) {
	from := s.holder(stage)
	if from == to {
		return
	}
	if from != "" {
		s.versions[from].stages = removeStage(s.versions[from].stages, stage)
		if stage == StageCurrent {
			s.move(StagePrevious, from)
		}
	}
	s.versions[to].stages = append(s.versions[to].stages, stage)
	sort.Strings(s.versions[to].stages)
}

func hasStage(stages []string, stage string) bool {
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

func removeStage(stages []string, stage string) []string {
	out := stages[:0]
	for _, s := range stages {
		if s != stage {
			out = append(out, s)
		}
	}
	return out
}
