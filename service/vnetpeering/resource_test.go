package vnetpeering

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/google/go-cmp/cmp"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

func Test_desiredPeering(t *testing.T) {
	remote := workflow.VirtualNetwork{
		ID:   "/subscriptions/s/resourceGroups/demo/providers/Microsoft.Network/virtualNetworks/vnet-b",
		Name: "vnet-b",
	}

	expected := network.VirtualNetworkPeering{
		VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
			AllowVirtualNetworkAccess: to.BoolPtr(true),
			AllowForwardedTraffic:     to.BoolPtr(true),
			AllowGatewayTransit:       to.BoolPtr(false),
			UseRemoteGateways:         to.BoolPtr(false),
			RemoteVirtualNetwork: &network.SubResource{
				ID: to.StringPtr(remote.ID),
			},
		},
	}

	peering := desiredPeering(remote)

	if !cmp.Equal(peering, expected) {
		t.Fatalf("\n\n%s\n", cmp.Diff(expected, peering))
	}
}

func Test_narrowed(t *testing.T) {
	testCases := []struct {
		name     string
		peering  network.VirtualNetworkPeering
		expected network.VirtualNetworkPeering
	}{
		{
			name: "case 0: only the access flag changes, every other field is retained",
			peering: network.VirtualNetworkPeering{
				Name: to.StringPtr("peering-demo"),
				VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
					AllowVirtualNetworkAccess: to.BoolPtr(true),
					AllowForwardedTraffic:     to.BoolPtr(true),
					AllowGatewayTransit:       to.BoolPtr(false),
					UseRemoteGateways:         to.BoolPtr(false),
					RemoteVirtualNetwork: &network.SubResource{
						ID: to.StringPtr("some ID"),
					},
					RemoteAddressSpace: &network.AddressSpace{
						AddressPrefixes: &[]string{
							"10.1.0.0/27",
						},
					},
					PeeringState:      network.VirtualNetworkPeeringStateConnected,
					ProvisioningState: network.Succeeded,
				},
			},
			expected: network.VirtualNetworkPeering{
				Name: to.StringPtr("peering-demo"),
				VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
					AllowVirtualNetworkAccess: to.BoolPtr(false),
					AllowForwardedTraffic:     to.BoolPtr(true),
					AllowGatewayTransit:       to.BoolPtr(false),
					UseRemoteGateways:         to.BoolPtr(false),
					RemoteVirtualNetwork: &network.SubResource{
						ID: to.StringPtr("some ID"),
					},
					RemoteAddressSpace: &network.AddressSpace{
						AddressPrefixes: &[]string{
							"10.1.0.0/27",
						},
					},
					PeeringState:      network.VirtualNetworkPeeringStateConnected,
					ProvisioningState: network.Succeeded,
				},
			},
		},
		{
			name: "case 1: access already revoked stays revoked",
			peering: network.VirtualNetworkPeering{
				VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
					AllowVirtualNetworkAccess: to.BoolPtr(false),
					AllowForwardedTraffic:     to.BoolPtr(true),
				},
			},
			expected: network.VirtualNetworkPeering{
				VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
					AllowVirtualNetworkAccess: to.BoolPtr(false),
					AllowForwardedTraffic:     to.BoolPtr(true),
				},
			},
		},
		{
			name:    "case 2: missing properties are initialized",
			peering: network.VirtualNetworkPeering{},
			expected: network.VirtualNetworkPeering{
				VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
					AllowVirtualNetworkAccess: to.BoolPtr(false),
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			narrowedPeering := narrowed(tc.peering)

			if !cmp.Equal(narrowedPeering, tc.expected) {
				t.Fatalf("\n\n%s\n", cmp.Diff(tc.expected, narrowedPeering))
			}
		})
	}
}

// narrowed must not mutate the peering it was given, the Azure API response
// stays usable for the caller.
func Test_narrowed_doesNotAliasInput(t *testing.T) {
	peering := network.VirtualNetworkPeering{
		VirtualNetworkPeeringPropertiesFormat: &network.VirtualNetworkPeeringPropertiesFormat{
			AllowVirtualNetworkAccess: to.BoolPtr(true),
		},
	}

	_ = narrowed(peering)

	if !*peering.VirtualNetworkPeeringPropertiesFormat.AllowVirtualNetworkAccess {
		t.Fatalf("input peering was mutated")
	}
}
