package connectivity

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/network/mgmt/2019-11-01/network"

	"github.com/giantswarm/azure-peering-demo/service/workflow"
)

func Test_statusFromConnectionStatus(t *testing.T) {
	testCases := []struct {
		name     string
		status   network.ConnectionStatus
		expected workflow.Status
	}{
		{
			name:     "case 0: connected is reachable",
			status:   network.ConnectionStatusConnected,
			expected: workflow.StatusReachable,
		},
		{
			name:     "case 1: disconnected is unreachable",
			status:   network.ConnectionStatusDisconnected,
			expected: workflow.StatusUnreachable,
		},
		{
			name:     "case 2: degraded is unreachable",
			status:   network.ConnectionStatusDegraded,
			expected: workflow.StatusUnreachable,
		},
		{
			name:     "case 3: unknown is unknown",
			status:   network.ConnectionStatusUnknown,
			expected: workflow.StatusUnknown,
		},
		{
			name:     "case 4: empty status is unknown",
			status:   network.ConnectionStatus(""),
			expected: workflow.StatusUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status := statusFromConnectionStatus(tc.status)

			if status != tc.expected {
				t.Fatalf("status == %q, want %q", status, tc.expected)
			}
		})
	}
}

func Test_resourceGroupFromID(t *testing.T) {
	testCases := []struct {
		name     string
		id       string
		expected string
	}{
		{
			name:     "case 0: watcher resource ID",
			id:       "/subscriptions/s/resourceGroups/NetworkWatcherRG/providers/Microsoft.Network/networkWatchers/NetworkWatcher_westus2",
			expected: "NetworkWatcherRG",
		},
		{
			name:     "case 1: case insensitive segment match",
			id:       "/subscriptions/s/resourcegroups/demo/providers/Microsoft.Network/networkWatchers/watcher",
			expected: "demo",
		},
		{
			name:     "case 2: malformed ID yields empty group",
			id:       "not-a-resource-id",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			group := resourceGroupFromID(tc.id)

			if group != tc.expected {
				t.Fatalf("group == %q, want %q", group, tc.expected)
			}
		})
	}
}
