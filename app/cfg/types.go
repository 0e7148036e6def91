package cfg

type Cfg struct {
	// Site layout
	ContentDir   string
	TemplatesDir string
	OutputDir    string
	SiteConfig   string

	// Build configuration
	RecordsDB   string
	WorkerCount int
	Force       bool

	// Preview server
	Serve   bool
	Port    string
	BaseUrl string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
