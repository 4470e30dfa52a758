package resourcegroup

import (
	"context"

	azureresource "github.com/Azure/azure-sdk-for-go/services/resources/mgmt/2019-05-01/resources"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/azure-peering-demo/client"
	"github.com/giantswarm/azure-peering-demo/pkg/project"
	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

const (
	// Name is the identifier of the resource.
	Name = "resourcegroup"
)

type Config struct {
	GroupsClient *azureresource.GroupsClient
	Logger       micrologger.Logger

	GroupName string
	Location  string
}

// Resource manages the demo's Azure resource group, the logical container
// every other resource is scoped to.
type Resource struct {
	groupsClient *azureresource.GroupsClient
	logger       micrologger.Logger

	groupName string
	location  string
}

func New(config Config) (*Resource, error) {
	if config.GroupsClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.GroupsClient must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}

	if config.GroupName == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.GroupName must not be empty", config)
	}
	if config.Location == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.Location must not be empty", config)
	}

	r := &Resource{
		groupsClient: config.GroupsClient,
		logger:       config.Logger,

		groupName: config.GroupName,
		location:  config.Location,
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return Name
}

// EnsureCreated creates the resource group via the Azure API and returns its
// handle. The operation is an idempotent create-or-update.
func (r *Resource) EnsureCreated(ctx context.Context) (workflow.Group, error) {
	r.logger.Debugf(ctx, "ensuring resource group %#q is created", r.groupName)

	resourceGroup := azureresource.Group{
		Name:      to.StringPtr(r.groupName),
		Location:  to.StringPtr(r.location),
		ManagedBy: to.StringPtr(project.Name()),
	}
	created, err := r.groupsClient.CreateOrUpdate(ctx, r.groupName, resourceGroup)
	if err != nil {
		return workflow.Group{}, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured resource group %#q is created", r.groupName)

	group := workflow.Group{
		ID:       to.String(created.ID),
		Name:     to.String(created.Name),
		Location: to.String(created.Location),
	}

	return group, nil
}

// EnsureDeleted deletes the resource group via the Azure API, cascading to
// every resource inside, and blocks until the deletion completed. A group
// that does not exist is not an error.
func (r *Resource) EnsureDeleted(ctx context.Context, group workflow.Group) error {
	r.logger.Debugf(ctx, "ensuring resource group %#q is deleted", group.Name)

	existing, err := r.groupsClient.Get(ctx, group.Name)
	if client.ResponseWasNotFound(existing.Response) {
		r.logger.Debugf(ctx, "resource group %#q does not exist", group.Name)
		return nil
	} else if err != nil {
		return microerror.Mask(err)
	}

	future, err := r.groupsClient.Delete(ctx, group.Name)
	if IsNotFound(err) {
		r.logger.Debugf(ctx, "resource group %#q does not exist", group.Name)
		return nil
	} else if err != nil {
		return microerror.Mask(err)
	}

	err = future.WaitForCompletionRef(ctx, r.groupsClient.Client)
	if err != nil {
		return microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured resource group %#q is deleted", group.Name)

	return nil
}
