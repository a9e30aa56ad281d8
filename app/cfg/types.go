package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Pipeline configuration
	SourcesFile         string
	UpdateIntervalHours int
	MaxItemsPerDigest   int
	RetentionDays       int
	FetchTimeout        int

	// Delivery configuration
	TelegramBotToken string
	TelegramChatID   string

	// Status API configuration
	Port string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
