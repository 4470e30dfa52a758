package vnetpeering

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

const (
	// Name is the identifier of the resource.
	Name = "vnetpeering"
)

type Config struct {
	Logger            micrologger.Logger
	VnetPeeringClient *network.VirtualNetworkPeeringsClient

	// PeeringName is shared between the two directions of the peering.
	PeeringName string
}

// Resource manages the bidirectional peering between the two demo virtual
// networks.
type Resource struct {
	logger            micrologger.Logger
	vnetPeeringClient *network.VirtualNetworkPeeringsClient

	peeringName string
}

func New(config Config) (*Resource, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.VnetPeeringClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.VnetPeeringClient must not be empty", config)
	}

	if config.PeeringName == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.PeeringName must not be empty", config)
	}

	r := &Resource{
		logger:            config.Logger,
		vnetPeeringClient: config.VnetPeeringClient,

		peeringName: config.PeeringName,
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return Name
}

// Establish creates the peering in both directions, one record per network,
// each correctly targeting the respective remote network. Both records carry
// the shared peering name. The call blocks until both records are committed.
func (r *Resource) Establish(ctx context.Context, group workflow.Group, a, b workflow.VirtualNetwork) error {
	directions := []struct {
		local  workflow.VirtualNetwork
		remote workflow.VirtualNetwork
	}{
		{local: a, remote: b},
		{local: b, remote: a},
	}

	for _, d := range directions {
		r.logger.Debugf(ctx, "ensuring peering %#q from %#q to %#q is created", r.peeringName, d.local.Name, d.remote.Name)

		err := r.apply(ctx, group, d.local, desiredPeering(d.remote))
		if err != nil {
			return microerror.Mask(err)
		}

		r.logger.Debugf(ctx, "ensured peering %#q from %#q to %#q is created", r.peeringName, d.local.Name, d.remote.Name)
	}

	return nil
}

// Narrow revokes network access on both existing peering records. Each record
// is read from the Azure API, changed in the access flag only, and written
// back, so every other flag keeps its current value. The call blocks until
// both updates are committed, which makes subsequent probes valid evidence of
// the narrowed state.
func (r *Resource) Narrow(ctx context.Context, group workflow.Group, a, b workflow.VirtualNetwork) error {
	for _, vnet := range []workflow.VirtualNetwork{a, b} {
		r.logger.Debugf(ctx, "ensuring peering %#q on %#q revokes network access", r.peeringName, vnet.Name)

		current, err := r.vnetPeeringClient.Get(ctx, group.Name, vnet.Name, r.peeringName)
		if err != nil {
			return microerror.Mask(err)
		}

		err = r.apply(ctx, group, vnet, narrowed(current))
		if err != nil {
			return microerror.Mask(err)
		}

		r.logger.Debugf(ctx, "ensured peering %#q on %#q revokes network access", r.peeringName, vnet.Name)
	}

	return nil
}

func (r *Resource) apply(ctx context.Context, group workflow.Group, vnet workflow.VirtualNetwork, peering network.VirtualNetworkPeering) error {
	future, err := r.vnetPeeringClient.CreateOrUpdate(ctx, group.Name, vnet.Name, r.peeringName, peering)
	if err != nil {
		return microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.vnetPeeringClient.Client)
	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}

// desiredPeering is the permissive initial peering record pointing at the
// given remote network.
func desiredPeering(remote workflow.VirtualNetwork) network.VirtualNetworkPeering {
	return network.VirtualNetworkPeering{
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
}

// narrowed returns the given peering with network access revoked. Only the
// access flag changes, every other field keeps its current value.
func narrowed(peering network.VirtualNetworkPeering) network.VirtualNetworkPeering {
	var properties network.VirtualNetworkPeeringPropertiesFormat
	if peering.VirtualNetworkPeeringPropertiesFormat != nil {
		properties = *peering.VirtualNetworkPeeringPropertiesFormat
	}

	properties.AllowVirtualNetworkAccess = to.BoolPtr(false)
	peering.VirtualNetworkPeeringPropertiesFormat = &properties

	return peering
}
