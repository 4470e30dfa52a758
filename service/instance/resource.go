package instance

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/services/compute/mgmt/2019-07-01/compute"
	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

const (
	// Name is the identifier of the resource.
	Name = "instance"
)

const (
	// The Network Watcher agent extension is a precondition for the
	// connectivity checks; probes against a machine without it fail or are
	// unsupported.
	extensionName      = "NetworkWatcherAgent"
	extensionPublisher = "Microsoft.Azure.NetworkWatcher"
	extensionType      = "NetworkWatcherAgentLinux"
	extensionVersion   = "1.4"
)

type Config struct {
	InterfacesClient               *network.InterfacesClient
	Logger                         micrologger.Logger
	VirtualMachineExtensionsClient *compute.VirtualMachineExtensionsClient
	VirtualMachinesClient          *compute.VirtualMachinesClient

	AdminPassword string
	AdminUsername string
}

// Resource creates one virtual machine per virtual network, with a network
// interface bound to that network's subnet and the Network Watcher agent
// extension installed.
type Resource struct {
	interfacesClient               *network.InterfacesClient
	logger                         micrologger.Logger
	virtualMachineExtensionsClient *compute.VirtualMachineExtensionsClient
	virtualMachinesClient          *compute.VirtualMachinesClient

	adminPassword string
	adminUsername string
}

func New(config Config) (*Resource, error) {
	if config.InterfacesClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.InterfacesClient must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.VirtualMachineExtensionsClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.VirtualMachineExtensionsClient must not be empty", config)
	}
	if config.VirtualMachinesClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.VirtualMachinesClient must not be empty", config)
	}

	if config.AdminPassword == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.AdminPassword must not be empty", config)
	}
	if config.AdminUsername == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.AdminUsername must not be empty", config)
	}

	r := &Resource{
		interfacesClient:               config.InterfacesClient,
		logger:                         config.Logger,
		virtualMachineExtensionsClient: config.VirtualMachineExtensionsClient,
		virtualMachinesClient:          config.VirtualMachinesClient,

		adminPassword: config.AdminPassword,
		adminUsername: config.AdminUsername,
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return Name
}

// EnsureCreated creates one virtual machine per given network. The machines
// are independent of each other, so they are created concurrently, but all
// completions are awaited before returning. The returned handles are
// index-aligned with the given networks.
func (r *Resource) EnsureCreated(ctx context.Context, group workflow.Group, networks []workflow.VirtualNetwork) ([]workflow.Instance, error) {
	instances := make([]workflow.Instance, len(networks))

	g, gCtx := errgroup.WithContext(ctx)

	for i, vnet := range networks {
		i, vnet := i, vnet

		g.Go(func() error {
			instance, err := r.ensureInstance(gCtx, group, vnet)
			if err != nil {
				return microerror.Mask(err)
			}

			instances[i] = instance

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, microerror.Mask(err)
	}

	return instances, nil
}

func (r *Resource) ensureInstance(ctx context.Context, group workflow.Group, vnet workflow.VirtualNetwork) (workflow.Instance, error) {
	vmName := fmt.Sprintf("%s-vm", vnet.Name)

	nic, err := r.ensureInterface(ctx, group, vnet, vmName)
	if err != nil {
		return workflow.Instance{}, microerror.Mask(err)
	}

	vm, err := r.ensureVirtualMachine(ctx, group, vmName, nic)
	if err != nil {
		return workflow.Instance{}, microerror.Mask(err)
	}

	err = r.ensureWatcherAgent(ctx, group, vmName)
	if err != nil {
		return workflow.Instance{}, microerror.Mask(err)
	}

	instance := workflow.Instance{
		ID:   to.String(vm.ID),
		Name: to.String(vm.Name),
	}

	return instance, nil
}

func (r *Resource) ensureInterface(ctx context.Context, group workflow.Group, vnet workflow.VirtualNetwork, vmName string) (network.Interface, error) {
	nicName := fmt.Sprintf("%s-nic", vmName)

	r.logger.Debugf(ctx, "ensuring network interface %#q in subnet %#q is created", nicName, vnet.SubnetName)

	parameters := network.Interface{
		Name:     to.StringPtr(nicName),
		Location: to.StringPtr(group.Location),
		InterfacePropertiesFormat: &network.InterfacePropertiesFormat{
			IPConfigurations: &[]network.InterfaceIPConfiguration{
				{
					Name: to.StringPtr("primary"),
					InterfaceIPConfigurationPropertiesFormat: &network.InterfaceIPConfigurationPropertiesFormat{
						Subnet: &network.Subnet{
							ID: to.StringPtr(vnet.SubnetID),
						},
						PrivateIPAllocationMethod: network.Dynamic,
					},
				},
			},
		},
	}

	future, err := r.interfacesClient.CreateOrUpdate(ctx, group.Name, nicName, parameters)
	if err != nil {
		return network.Interface{}, microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.interfacesClient.Client)
	if err != nil {
		return network.Interface{}, microerror.Mask(err)
	}
	nic, err := future.Result(*r.interfacesClient)
	if err != nil {
		return network.Interface{}, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured network interface %#q is created", nicName)

	return nic, nil
}

func (r *Resource) ensureVirtualMachine(ctx context.Context, group workflow.Group, vmName string, nic network.Interface) (compute.VirtualMachine, error) {
	r.logger.Debugf(ctx, "ensuring virtual machine %#q is created", vmName)

	parameters := compute.VirtualMachine{
		Location: to.StringPtr(group.Location),
		VirtualMachineProperties: &compute.VirtualMachineProperties{
			HardwareProfile: &compute.HardwareProfile{
				VMSize: compute.VirtualMachineSizeTypesStandardB1s,
			},
			StorageProfile: &compute.StorageProfile{
				ImageReference: &compute.ImageReference{
					Publisher: to.StringPtr("Canonical"),
					Offer:     to.StringPtr("UbuntuServer"),
					Sku:       to.StringPtr("18.04-LTS"),
					Version:   to.StringPtr("latest"),
				},
			},
			OsProfile: &compute.OSProfile{
				ComputerName:  to.StringPtr(vmName),
				AdminUsername: to.StringPtr(r.adminUsername),
				AdminPassword: to.StringPtr(r.adminPassword),
			},
			NetworkProfile: &compute.NetworkProfile{
				NetworkInterfaces: &[]compute.NetworkInterfaceReference{
					{
						ID: nic.ID,
						NetworkInterfaceReferenceProperties: &compute.NetworkInterfaceReferenceProperties{
							Primary: to.BoolPtr(true),
						},
					},
				},
			},
		},
	}

	future, err := r.virtualMachinesClient.CreateOrUpdate(ctx, group.Name, vmName, parameters)
	if err != nil {
		return compute.VirtualMachine{}, microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.virtualMachinesClient.Client)
	if err != nil {
		return compute.VirtualMachine{}, microerror.Mask(err)
	}
	vm, err := future.Result(*r.virtualMachinesClient)
	if err != nil {
		return compute.VirtualMachine{}, microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured virtual machine %#q is created", vmName)

	return vm, nil
}

func (r *Resource) ensureWatcherAgent(ctx context.Context, group workflow.Group, vmName string) error {
	r.logger.Debugf(ctx, "ensuring extension %#q on virtual machine %#q is installed", extensionName, vmName)

	parameters := compute.VirtualMachineExtension{
		Location: to.StringPtr(group.Location),
		VirtualMachineExtensionProperties: &compute.VirtualMachineExtensionProperties{
			Publisher:               to.StringPtr(extensionPublisher),
			Type:                    to.StringPtr(extensionType),
			TypeHandlerVersion:      to.StringPtr(extensionVersion),
			AutoUpgradeMinorVersion: to.BoolPtr(true),
		},
	}

	future, err := r.virtualMachineExtensionsClient.CreateOrUpdate(ctx, group.Name, vmName, extensionName, parameters)
	if err != nil {
		return microerror.Mask(err)
	}
	err = future.WaitForCompletionRef(ctx, r.virtualMachineExtensionsClient.Client)
	if err != nil {
		return microerror.Mask(err)
	}

	r.logger.Debugf(ctx, "ensured extension %#q on virtual machine %#q is installed", extensionName, vmName)

	return nil
}
