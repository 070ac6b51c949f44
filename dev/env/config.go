package devenv

// JecnaTestConfig is read from dev/.state/jecna_test.json5 by tests that
// talk to the real portal.
type JecnaTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Subject is looked up on the fetched grades page.
	Subject string `json:"subject"`
}

const JecnaTestConfigFile = "jecna_test.json5"
