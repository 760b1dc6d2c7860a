package cfg

type Cfg struct {
	// Application configuration
	ConfigDir    string
	CacheDir     string
	DBPath       string
	FailureLog   string
	Port         string
	FetchTimeout int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
