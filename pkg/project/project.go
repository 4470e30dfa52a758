package project

var (
	description string = "The azure-peering-demo provisions two peered virtual networks on Azure and verifies connectivity between them with Network Watcher."
	gitSHA             = "n/a"
	name        string = "azure-peering-demo"
	source      string = "https://github.com/giantswarm/azure-peering-demo"
	version            = "0.1.0"
)

func Description() string {
	return description
}

func GitSHA() string {
	return gitSHA
}

func Name() string {
	return name
}

func Source() string {
	return source
}

func Version() string {
	return version
}
