package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "reading-lab/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CrawlConfig holds settings for the paper crawling stage.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// OutputDir is the base directory for downloads (contains raw/, metadata/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// IngestConfig holds settings for the text extraction stage.
type IngestConfig struct {
	// OutputDir is the directory for extracted text and metadata files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DisableOCR turns off the OCR fallback for scanned PDFs.
	DisableOCR bool `json:"disable_ocr" yaml:"disable_ocr"`

	// ScanThreshold is the average extracted characters per page below
	// which a PDF is treated as scanned and routed to OCR (default 100).
	ScanThreshold int `json:"scan_threshold" yaml:"scan_threshold"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the response length per API call (default 1200).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SummarizeConfig holds settings for the summarization stage.
type SummarizeConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory for JSON summary output.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxChunkChars bounds the size of each text chunk sent to the
	// model (default 6000).
	MaxChunkChars int `json:"max_chunk_chars" yaml:"max_chunk_chars"`

	// ChunkOverlap is the number of trailing characters carried from
	// one chunk into the next (default 400).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// DigestConfig holds settings for digest generation.
type DigestConfig struct {
	// JSONGlob selects the summary files to aggregate
	// (e.g. "summaries/json/*.json").
	JSONGlob string `json:"json_glob" yaml:"json_glob"`

	// OutputPath is where the rendered Markdown digest is written.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// IndexConfig holds settings for the summary index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// NotifyConfig holds settings for digest delivery.
type NotifyConfig struct {
	HTTPConfig `yaml:",inline"`

	// SlackWebhookURL enables the Slack channel when non-empty.
	SlackWebhookURL string `json:"slack_webhook_url,omitempty" yaml:"slack_webhook_url,omitempty"`

	// SlackChannel optionally overrides the webhook's default channel.
	SlackChannel string `json:"slack_channel,omitempty" yaml:"slack_channel,omitempty"`

	// SMTPHost enables the email channel when non-empty.
	SMTPHost string `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty"`

	// SMTPPort is the SMTP server port (default 587).
	SMTPPort int `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty"`

	// SMTPUser authenticates against the SMTP server.
	SMTPUser string `json:"smtp_user,omitempty" yaml:"smtp_user,omitempty"`

	// SMTPPassword authenticates against the SMTP server.
	SMTPPassword string `json:"smtp_password,omitempty" yaml:"smtp_password,omitempty"`

	// EmailFrom is the sender address for email notifications.
	EmailFrom string `json:"email_from,omitempty" yaml:"email_from,omitempty"`

	// EmailTo lists the recipient addresses for email notifications.
	EmailTo []string `json:"email_to,omitempty" yaml:"email_to,omitempty"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Crawl     CrawlConfig     `json:"crawl" yaml:"crawl"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
	Digest    DigestConfig    `json:"digest" yaml:"digest"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
}
