// Package integration identifies the hosting and issue integrations focus
// knows about and the sessions used to reach them.
package integration

import "slices"

// IntegrationID identifies an integration.
type IntegrationID string

// Hosting integrations
const (
	GitHub      IntegrationID = "github"
	GitLab      IntegrationID = "gitlab"
	Bitbucket   IntegrationID = "bitbucket"
	AzureDevOps IntegrationID = "azure-devops"
)

// Issue integrations
const (
	Jira   IntegrationID = "jira"
	Trello IntegrationID = "trello"
)

// Self-hosted integrations
const (
	CloudGitHubEnterprise IntegrationID = "cloud-github-enterprise"
	CloudGitLabSelfHosted IntegrationID = "cloud-gitlab-self-hosted"
	BitbucketServer       IntegrationID = "bitbucket-server"
	GitHubEnterprise      IntegrationID = "github-enterprise"
	GitLabSelfHosted      IntegrationID = "gitlab-self-hosted"
)

var names = map[IntegrationID]string{
	GitHub:                "GitHub",
	GitLab:                "GitLab",
	Bitbucket:             "Bitbucket",
	AzureDevOps:           "Azure DevOps",
	Jira:                  "Jira",
	Trello:                "Trello",
	CloudGitHubEnterprise: "GitHub Enterprise (cloud)",
	CloudGitLabSelfHosted: "GitLab Self-Managed (cloud)",
	BitbucketServer:       "Bitbucket Data Center",
	GitHubEnterprise:      "GitHub Enterprise",
	GitLabSelfHosted:      "GitLab Self-Managed",
}

// Name returns the display name of the integration.
func (id IntegrationID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

// Known reports whether id is one of the integrations above.
func (id IntegrationID) Known() bool {
	_, ok := names[id]
	return ok
}

// Resolve accepts an integration id or a cloud provider type, as in
// "github-enterprise" or "githubEnterprise".
func Resolve(s string) (IntegrationID, bool) {
	if id, ok := ToIntegrationID(CloudIntegrationType(s)); ok {
		return id, true
	}
	id := IntegrationID(s)
	return id, id.Known()
}

// IsGitHub reports whether the integration talks the GitHub API.
func (id IntegrationID) IsGitHub() bool {
	return id == GitHub || id == GitHubEnterprise || id == CloudGitHubEnterprise
}

// IsGitLab reports whether the integration talks the GitLab API.
func (id IntegrationID) IsGitLab() bool {
	return id == GitLab || id == GitLabSelfHosted || id == CloudGitLabSelfHosted
}

// CloudIntegrationType is the provider name used by cloud connections.
type CloudIntegrationType string

const (
	CloudTypeJira             CloudIntegrationType = "jira"
	CloudTypeTrello           CloudIntegrationType = "trello"
	CloudTypeGitLab           CloudIntegrationType = "gitlab"
	CloudTypeGitHub           CloudIntegrationType = "github"
	CloudTypeBitbucket        CloudIntegrationType = "bitbucket"
	CloudTypeBitbucketServer  CloudIntegrationType = "bitbucketServer"
	CloudTypeAzure            CloudIntegrationType = "azure"
	CloudTypeGitHubEnterprise CloudIntegrationType = "githubEnterprise"
	CloudTypeGitLabSelfHosted CloudIntegrationType = "gitlabSelfHosted"
)

var toIntegrationID = map[CloudIntegrationType]IntegrationID{
	CloudTypeJira:             Jira,
	CloudTypeTrello:           Trello,
	CloudTypeGitLab:           GitLab,
	CloudTypeGitHub:           GitHub,
	CloudTypeGitHubEnterprise: CloudGitHubEnterprise,
	CloudTypeGitLabSelfHosted: CloudGitLabSelfHosted,
	CloudTypeBitbucket:        Bitbucket,
	CloudTypeBitbucketServer:  BitbucketServer,
	CloudTypeAzure:            AzureDevOps,
}

var toCloudIntegrationType = map[IntegrationID]CloudIntegrationType{
	Jira:                  CloudTypeJira,
	Trello:                CloudTypeTrello,
	GitLab:                CloudTypeGitLab,
	GitHub:                CloudTypeGitHub,
	Bitbucket:             CloudTypeBitbucket,
	AzureDevOps:           CloudTypeAzure,
	CloudGitHubEnterprise: CloudTypeGitHubEnterprise,
	CloudGitLabSelfHosted: CloudTypeGitLabSelfHosted,
	BitbucketServer:       CloudTypeBitbucketServer,
}

// ToIntegrationID maps a cloud provider type to its integration id.
func ToIntegrationID(t CloudIntegrationType) (IntegrationID, bool) {
	id, ok := toIntegrationID[t]
	return id, ok
}

// ToCloudIntegrationType maps an integration id to its cloud provider type.
// Directly configured self-hosted integrations have none.
func ToCloudIntegrationType(id IntegrationID) (CloudIntegrationType, bool) {
	t, ok := toCloudIntegrationType[id]
	return t, ok
}

var supportedOrderedCloudIntegrationIDs = []IntegrationID{
	GitHub,
	CloudGitHubEnterprise,
	GitLab,
	CloudGitLabSelfHosted,
	AzureDevOps,
	Bitbucket,
	BitbucketServer,
	Jira,
}

var supportedOrderedCloudIssueIntegrationIDs = []IntegrationID{
	Jira,
}

// SupportedCloudIntegrationIDs returns the cloud integration ids in display
// order. With cloud integrations disabled only issue integrations remain.
func SupportedCloudIntegrationIDs(cloudEnabled bool) []IntegrationID {
	if cloudEnabled {
		return slices.Clone(supportedOrderedCloudIntegrationIDs)
	}
	return slices.Clone(supportedOrderedCloudIssueIntegrationIDs)
}

// IsSupportedCloudIntegrationID reports whether id is a supported cloud
// integration under the given setting.
func IsSupportedCloudIntegrationID(id string, cloudEnabled bool) bool {
	return slices.Contains(SupportedCloudIntegrationIDs(cloudEnabled), IntegrationID(id))
}
