package workflow

import (
	"context"
	"fmt"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
)

// probePort is the TCP port the connectivity checks target on the destination
// virtual machine.
const probePort = 22

type Config struct {
	Compute  ComputeProvisioner
	Groups   GroupProvisioner
	Logger   micrologger.Logger
	Networks NetworkProvisioner
	Peerings PeeringManager
	Prober   ConnectivityProber
}

// Workflow runs the demo sequence once: provision the resource group, the two
// virtual networks and their virtual machines, peer the networks, probe
// connectivity in both directions, narrow the peering, probe again, and tear
// the resource group down.
type Workflow struct {
	compute  ComputeProvisioner
	groups   GroupProvisioner
	logger   micrologger.Logger
	networks NetworkProvisioner
	peerings PeeringManager
	prober   ConnectivityProber
}

func New(config Config) (*Workflow, error) {
	if config.Compute == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Compute must not be empty", config)
	}
	if config.Groups == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Groups must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.Networks == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Networks must not be empty", config)
	}
	if config.Peerings == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Peerings must not be empty", config)
	}
	if config.Prober == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Prober must not be empty", config)
	}

	w := &Workflow{
		compute:  config.Compute,
		groups:   config.Groups,
		logger:   config.Logger,
		networks: config.Networks,
		peerings: config.Peerings,
		prober:   config.Prober,
	}

	return w, nil
}

// Run executes the whole demo. Teardown runs no matter how far provisioning
// got; a teardown failure is logged but never masks the provisioning error.
func (w *Workflow) Run(ctx context.Context) error {
	group, err := w.provision(ctx)

	w.teardown(ctx, group)

	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}

// provision walks through the sequential steps of the demo. It returns the
// resource group handle even when a later step failed so that teardown knows
// what to clean up.
func (w *Workflow) provision(ctx context.Context) (Group, error) {
	group, err := w.groups.EnsureCreated(ctx)
	if err != nil {
		return Group{}, microerror.Mask(err)
	}

	networks, err := w.networks.EnsureCreated(ctx, group)
	if err != nil {
		return group, microerror.Mask(err)
	}
	if len(networks) != 2 {
		return group, microerror.Maskf(executionFailedError, "expected 2 virtual networks, got %d", len(networks))
	}

	instances, err := w.compute.EnsureCreated(ctx, group, networks)
	if err != nil {
		return group, microerror.Mask(err)
	}
	if len(instances) != 2 {
		return group, microerror.Maskf(executionFailedError, "expected 2 virtual machines, got %d", len(instances))
	}

	err = w.peerings.Establish(ctx, group, networks[0], networks[1])
	if err != nil {
		return group, microerror.Mask(err)
	}

	err = w.probeBothDirections(ctx, group, instances[0], instances[1])
	if err != nil {
		return group, microerror.Mask(err)
	}

	err = w.peerings.Narrow(ctx, group, networks[0], networks[1])
	if err != nil {
		return group, microerror.Mask(err)
	}

	// The peering changed, so both verdicts have to be requested fresh.
	err = w.probeBothDirections(ctx, group, instances[0], instances[1])
	if err != nil {
		return group, microerror.Mask(err)
	}

	return group, nil
}

func (w *Workflow) probeBothDirections(ctx context.Context, group Group, a, b Instance) error {
	directions := []struct {
		source      Instance
		destination Instance
	}{
		{source: a, destination: b},
		{source: b, destination: a},
	}

	for _, d := range directions {
		status, err := w.prober.Probe(ctx, group, d.source, d.destination, probePort)
		if err != nil {
			return microerror.Mask(err)
		}

		w.logger.Debugf(ctx, "connectivity from %#q to %#q on port %d: %s", d.source.Name, d.destination.Name, probePort, status)
	}

	return nil
}

func (w *Workflow) teardown(ctx context.Context, group Group) {
	if group.IsZero() {
		w.logger.Debugf(ctx, "no resource group was created, nothing to tear down")
		return
	}

	err := w.groups.EnsureDeleted(ctx, group)
	if err != nil {
		w.logger.LogCtx(ctx, "level", "error", "message", fmt.Sprintf("teardown of resource group %#q failed", group.Name), "stack", fmt.Sprintf("%#v", err))
	}
}
