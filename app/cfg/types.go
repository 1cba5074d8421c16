package cfg

type Cfg struct {
	// Data layout
	DataDir    string
	SourcesDir string

	// HTTP server
	Port    string
	BaseUrl string

	// Generative backend
	GeminiAPIKey string
	GeminiModel  string

	// Reddit provider credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Collection run
	CollectCron    string
	CollectTimeout int // minutes
	SourceWorkers  int
	CollectOnStart bool
	CollectAndExit bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
