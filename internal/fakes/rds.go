package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// FakeRDSClient tracks master passwords of known instances.
type FakeRDSClient struct {
	ModifyDBInstanceFunc func(ctx context.Context, params *rds.ModifyDBInstanceInput) (*rds.ModifyDBInstanceOutput, error)

	mu        sync.Mutex
	passwords map[string]string
	Calls     []*rds.ModifyDBInstanceInput
}

// NewFakeRDSClient creates an empty fake
func NewFakeRDSClient() *FakeRDSClient {
	return &FakeRDSClient{passwords: make(map[string]string)}
}

// AddInstance registers an instance with its current master password
func (f *FakeRDSClient) AddInstance(instanceID, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[instanceID] = password
}

// MasterPassword returns the current master password of an instance
func (f *FakeRDSClient) MasterPassword(instanceID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.passwords[instanceID]
	return pw, ok
}

// ModifyDBInstance fakes the ModifyDBInstance operation. Only the master
// password is honoured.
func (f *FakeRDSClient) ModifyDBInstance(ctx context.Context, params *rds.ModifyDBInstanceInput, optFns ...func(*rds.Options)) (*rds.ModifyDBInstanceOutput, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, params)
	f.mu.Unlock()

	if f.ModifyDBInstanceFunc != nil {
		return f.ModifyDBInstanceFunc(ctx, params)
	}

	id := aws.ToString(params.DBInstanceIdentifier)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.passwords[id]; !ok {
		return nil, &types.DBInstanceNotFoundFault{Message: aws.String(fmt.Sprintf("DBInstance %s not found.", id))}
	}
	if params.MasterUserPassword != nil {
		f.passwords[id] = aws.ToString(params.MasterUserPassword)
	}
	return &rds.ModifyDBInstanceOutput{
		DBInstance: &types.DBInstance{DBInstanceIdentifier: aws.String(id)},
	}, nil
}
