package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// FakeCognitoClient keeps user passwords per pool in memory. Setting a
// password for a user that was never added fails with UserNotFoundException.
type FakeCognitoClient struct {
	AdminSetUserPasswordFunc func(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error)

	mu        sync.Mutex
	users     map[string]map[string]string
	Calls     []*cognitoidentityprovider.AdminSetUserPasswordInput
	Permanent map[string]bool
}

// NewFakeCognitoClient creates an empty fake
func NewFakeCognitoClient() *FakeCognitoClient {
	return &FakeCognitoClient{
		users:     make(map[string]map[string]string),
		Permanent: make(map[string]bool),
	}
}

// AddUser registers a user in a pool
func (f *FakeCognitoClient) AddUser(poolID, username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users[poolID] == nil {
		f.users[poolID] = make(map[string]string)
	}
	f.users[poolID][username] = password
}

// Password returns the stored password of a user
func (f *FakeCognitoClient) Password(poolID, username string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.users[poolID][username]
	return pw, ok
}

// AdminSetUserPassword fakes the AdminSetUserPassword operation
func (f *FakeCognitoClient) AdminSetUserPassword(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, params)
	f.mu.Unlock()

	if f.AdminSetUserPasswordFunc != nil {
		return f.AdminSetUserPasswordFunc(ctx, params)
	}

	poolID := aws.ToString(params.UserPoolId)
	username := aws.ToString(params.Username)

	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.users[poolID]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String(fmt.Sprintf("user pool %s does not exist", poolID))}
	}
	if _, ok := pool[username]; !ok {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}
	pool[username] = aws.ToString(params.Password)
	f.Permanent[poolID+"/"+username] = params.Permanent
	return &cognitoidentityprovider.AdminSetUserPasswordOutput{}, nil
}
