// Package fakes provides in-process stand-ins for the AWS SDK clients used by
// credrotate. Each fake records its calls and exposes ...Func fields so a test
// can override a single operation.
package fakes
