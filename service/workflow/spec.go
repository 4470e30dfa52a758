package workflow

import (
	"context"
)

// Group is the handle of the resource group every other resource of the demo
// lives in. The zero value means no group was created, which teardown treats
// as a no-op.
type Group struct {
	ID       string
	Name     string
	Location string
}

// IsZero reports whether the group handle refers to no resource group.
func (g Group) IsZero() bool {
	return g == Group{}
}

// VirtualNetwork is the handle of one of the two isolated virtual networks,
// including its single subnet.
type VirtualNetwork struct {
	ID            string
	Name          string
	AddressPrefix string
	SubnetID      string
	SubnetName    string
	SubnetPrefix  string
}

// Instance is the handle of one of the two virtual machines.
type Instance struct {
	ID   string
	Name string
}

// Status is the verdict of a single connectivity probe.
type Status string

const (
	StatusReachable   Status = "Reachable"
	StatusUnreachable Status = "Unreachable"
	StatusUnknown     Status = "Unknown"
)

// GroupProvisioner creates the resource group the demo runs in and deletes it
// again, cascading to everything inside.
type GroupProvisioner interface {
	EnsureCreated(ctx context.Context) (Group, error)
	EnsureDeleted(ctx context.Context, group Group) error
}

// NetworkProvisioner creates the two isolated virtual networks inside the
// group. The returned slice has one entry per configured network, in
// configuration order.
type NetworkProvisioner interface {
	EnsureCreated(ctx context.Context, group Group) ([]VirtualNetwork, error)
}

// ComputeProvisioner creates one virtual machine per virtual network,
// including its network interface and the Network Watcher agent extension the
// connectivity checks depend on. The returned slice is index-aligned with the
// given networks.
type ComputeProvisioner interface {
	EnsureCreated(ctx context.Context, group Group, networks []VirtualNetwork) ([]Instance, error)
}

// PeeringManager maintains the bidirectional peering between the two virtual
// networks.
//
// Establish creates one correctly targeted peering record per direction,
// sharing a single peering name, with network access and traffic forwarding
// allowed. Narrow updates both existing records in place to revoke network
// access, leaving every other flag untouched.
type PeeringManager interface {
	Establish(ctx context.Context, group Group, a, b VirtualNetwork) error
	Narrow(ctx context.Context, group Group, a, b VirtualNetwork) error
}

// ConnectivityProber asks the regional Network Watcher for a fresh reachability
// verdict between two virtual machines on the given TCP port.
type ConnectivityProber interface {
	Probe(ctx context.Context, group Group, source, destination Instance, port int32) (Status, error)
}
