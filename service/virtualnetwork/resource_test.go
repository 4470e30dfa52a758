package virtualnetwork

import (
	"testing"
)

func Test_validateDefinitions(t *testing.T) {
	testCases := []struct {
		name         string
		definitions  []Definition
		errorMatcher func(err error) bool
	}{
		{
			name: "case 0: the demo networks are disjoint",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/27", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/27"},
				{Name: "vnet-b", AddressPrefix: "10.1.0.0/27", SubnetName: "subnet-b", SubnetPrefix: "10.1.0.0/27"},
			},
			errorMatcher: nil,
		},
		{
			name: "case 1: identical address spaces overlap",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/27", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/27"},
				{Name: "vnet-b", AddressPrefix: "10.0.0.0/27", SubnetName: "subnet-b", SubnetPrefix: "10.0.0.0/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 2: nested address spaces overlap",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/24", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/27"},
				{Name: "vnet-b", AddressPrefix: "10.0.0.32/27", SubnetName: "subnet-b", SubnetPrefix: "10.0.0.32/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 3: subnet outside its address space is invalid",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/27", SubnetName: "subnet-a", SubnetPrefix: "10.1.0.0/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 4: malformed address prefix is invalid",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "not-a-cidr", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 5: missing name is invalid",
			definitions: []Definition{
				{AddressPrefix: "10.0.0.0/27", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 6: missing subnet name is invalid",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/27", SubnetPrefix: "10.0.0.0/27"},
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 7: sibling ranges with different second octet are disjoint",
			definitions: []Definition{
				{Name: "vnet-a", AddressPrefix: "10.0.0.0/16", SubnetName: "subnet-a", SubnetPrefix: "10.0.0.0/24"},
				{Name: "vnet-b", AddressPrefix: "10.1.0.0/16", SubnetName: "subnet-b", SubnetPrefix: "10.1.0.0/24"},
			},
			errorMatcher: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDefinitions(tc.definitions)

			switch {
			case err == nil && tc.errorMatcher == nil:
				// correct; carry on
			case err != nil && tc.errorMatcher == nil:
				t.Fatalf("error == %#v, want nil", err)
			case err == nil && tc.errorMatcher != nil:
				t.Fatalf("error == nil, want non-nil")
			case !tc.errorMatcher(err):
				t.Fatalf("error == %#v, want matching", err)
			}
		})
	}
}
