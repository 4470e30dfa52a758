package connectivity

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

const (
	// Name is the identifier of the resource.
	Name = "connectivity"
)

type Config struct {
	Logger         micrologger.Logger
	WatchersClient *network.WatchersClient
}

// Resource runs connectivity checks between virtual machines through the
// regional Network Watcher service.
type Resource struct {
	logger         micrologger.Logger
	watchersClient *network.WatchersClient

	// Network Watcher is a region scoped singleton. The reference is resolved
	// on the first probe and reused afterwards; verdicts are never reused.
	watcher watcherRef
}

type watcherRef struct {
	resourceGroup string
	name          string
}

func New(config Config) (*Resource, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.WatchersClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.WatchersClient must not be empty", config)
	}

	r := &Resource{
		logger:         config.Logger,
		watchersClient: config.WatchersClient,
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return Name
}

// Probe asks Network Watcher for a reachability verdict between the two
// virtual machines on the given TCP port. The call blocks until the provider
// returned a verdict.
func (r *Resource) Probe(ctx context.Context, group workflow.Group, source, destination workflow.Instance, port int32) (workflow.Status, error) {
	watcher, err := r.ensureWatcher(ctx, group)
	if err != nil {
		return workflow.StatusUnknown, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "checking connectivity from %#q to %#q on port %d", source.Name, destination.Name, port)

	parameters := network.ConnectivityParameters{
		Source: &network.ConnectivitySource{
			ResourceID: to.StringPtr(source.ID),
		},
		Destination: &network.ConnectivityDestination{
			ResourceID: to.StringPtr(destination.ID),
			Port:       to.Int32Ptr(port),
		},
		Protocol: network.ProtocolTCP,
	}

	future, err := r.watchersClient.CheckConnectivity(ctx, watcher.resourceGroup, watcher.name, parameters)
	if err != nil {
		return workflow.StatusUnknown, microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.watchersClient.Client)
	if err != nil {
		return workflow.StatusUnknown, microerror.Mask(err)
	}
	information, err := future.Result(*r.watchersClient)
	if err != nil {
		return workflow.StatusUnknown, microerror.Mask(err)
	}

	return statusFromConnectionStatus(information.ConnectionStatus), nil
}

// ensureWatcher resolves the Network Watcher for the group's region. An
// existing watcher is looked up and reused since the service allows one per
// region per subscription; only when the region has none a watcher is created
// inside the demo's resource group so that teardown removes it again.
func (r *Resource) ensureWatcher(ctx context.Context, group workflow.Group) (watcherRef, error) {
	if r.watcher != (watcherRef{}) {
		return r.watcher, nil
	}

	list, err := r.watchersClient.ListAll(ctx)
	if err != nil {
		return watcherRef{}, microerror.Mask(err)
	}

	if list.Value != nil {
		for _, w := range *list.Value {
			if strings.EqualFold(to.String(w.Location), group.Location) {
				r.watcher = watcherRef{
					resourceGroup: resourceGroupFromID(to.String(w.ID)),
					name:          to.String(w.Name),
				}

				r.logger.Debugf(ctx, "using existing network watcher %#q in region %#q", r.watcher.name, group.Location)

				return r.watcher, nil
			}
		}
	}

	name := fmt.Sprintf("NetworkWatcher_%s", group.Location)

	r.logger.Debugf(ctx, "ensuring network watcher %#q in region %#q is created", name, group.Location)

	parameters := network.Watcher{
		Location: to.StringPtr(group.Location),
	}
	_, err = r.watchersClient.CreateOrUpdate(ctx, group.Name, name, parameters)
	if err != nil {
		return watcherRef{}, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured network watcher %#q in region %#q is created", name, group.Location)

	r.watcher = watcherRef{
		resourceGroup: group.Name,
		name:          name,
	}

	return r.watcher, nil
}

func statusFromConnectionStatus(status network.ConnectionStatus) workflow.Status {
	switch status {
	case network.ConnectionStatusConnected:
		return workflow.StatusReachable
	case network.ConnectionStatusDisconnected, network.ConnectionStatusDegraded:
		return workflow.StatusUnreachable
	default:
		return workflow.StatusUnknown
	}
}

// resourceGroupFromID extracts the resource group segment of an ARM resource
// ID.
func resourceGroupFromID(id string) string {
	segments := strings.Split(id, "/")
	for i := 0; i < len(segments)-1; i++ {
		if strings.EqualFold(segments[i], "resourceGroups") {
			return segments[i+1]
		}
	}

	return ""
}
