package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "DATA_DEAL_MONITOR_CONFIG"

	databasePathEnv       = "DATABASE_PATH"
	anthropicAPIKeyEnv    = "ANTHROPIC_API_KEY"
	claudeModelEnv        = "CLAUDE_MODEL"
	redditClientIDEnv     = "REDDIT_CLIENT_ID"
	redditClientSecretEnv = "REDDIT_CLIENT_SECRET"
	redditUserAgentEnv    = "REDDIT_USER_AGENT"
	githubTokenEnv        = "GITHUB_TOKEN"
	hfTokenEnv            = "HF_TOKEN"
	slackWebhookURLEnv    = "SLACK_WEBHOOK_URL"
	slackUserIDEnv        = "SLACK_USER_ID"
	scoreThresholdEnv     = "SCORE_THRESHOLD"
	outreachLogEnv        = "AUTO_BDR_OUTREACH_LOG"

	defaultPacing   = 500 * time.Millisecond
	defaultInterval = 6 * time.Hour
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Claude    ClaudeConfig    `yaml:"claude"`
	Slack     SlackConfig     `yaml:"slack"`
	Outreach  OutreachConfig  `yaml:"outreach"`
	Sources   SourcesConfig   `yaml:"sources"`
	Keywords  KeywordConfig   `yaml:"keywords"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the sqlite signal store location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines how often the monitor runs in watch mode.
type SchedulerConfig struct {
	Interval string `yaml:"interval"`
}

// Every resolves the interval string, reverting to the default on bad input.
func (s SchedulerConfig) Every() time.Duration {
	if d, err := time.ParseDuration(s.Interval); err == nil && d > 0 {
		return d
	}
	return defaultInterval
}

// ScoringConfig holds the notification threshold and the scorer pacing delay.
type ScoringConfig struct {
	Threshold   int    `yaml:"threshold"`
	PacingDelay string `yaml:"pacingDelay"`
}

// Pacing resolves the inter-signal delay that keeps the evaluator within its
// rate limits.
func (s ScoringConfig) Pacing() time.Duration {
	if d, err := time.ParseDuration(s.PacingDelay); err == nil && d >= 0 {
		return d
	}
	return defaultPacing
}

// ClaudeConfig defines how to contact the Anthropic messages API.
type ClaudeConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	MaxTokens int    `yaml:"maxTokens"`
}

// SlackConfig wires the webhook transport and the optional mention target.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	UserID     string `yaml:"userId"`
}

// OutreachConfig points at the outreach log owned by the auto-bdr tool.
type OutreachConfig struct {
	LogPath string `yaml:"logPath"`
}

// SourcesConfig groups per-platform adapter settings.
type SourcesConfig struct {
	Reddit      RedditConfig      `yaml:"reddit"`
	GitHub      GitHubConfig      `yaml:"github"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	AlphaXiv    AlphaXivConfig    `yaml:"alphaxiv"`
	Digest      DigestConfig      `yaml:"digest"`
}

// RedditConfig describes the subreddit scan.
type RedditConfig struct {
	ClientID      string   `yaml:"clientId"`
	ClientSecret  string   `yaml:"clientSecret"`
	UserAgent     string   `yaml:"userAgent"`
	Subreddits    []string `yaml:"subreddits"`
	LookbackHours int      `yaml:"lookbackHours"`
}

// GitHubConfig describes the issue-search scan.
type GitHubConfig struct {
	Token         string   `yaml:"token"`
	SearchQueries []string `yaml:"searchQueries"`
	PriorityRepos []string `yaml:"priorityRepos"`
	LookbackDays  int      `yaml:"lookbackDays"`
}

// HuggingFaceConfig describes dataset discussion and search scans.
type HuggingFaceConfig struct {
	Token           string   `yaml:"token"`
	WatchedDatasets []string `yaml:"watchedDatasets"`
	SearchTerms     []string `yaml:"searchTerms"`
}

// AlphaXivConfig points at the trending page to scrape.
type AlphaXivConfig struct {
	TrendingURL string `yaml:"trendingUrl"`
}

// DigestConfig points at the weekly digest feed.
type DigestConfig struct {
	FeedURL string `yaml:"feedUrl"`
}

// KeywordConfig holds the keyword clusters used for adapter pre-filtering.
type KeywordConfig struct {
	Pain        []string `yaml:"pain"`
	Need        []string `yaml:"need"`
	RLHF        []string `yaml:"rlhf"`
	Competitor  []string `yaml:"competitor"`
	Frustration []string `yaml:"frustration"`
	Synthetic   []string `yaml:"synthetic"`
	Budget      []string `yaml:"budget"`
}

// All returns every cluster combined, in declaration order.
func (k KeywordConfig) All() []string {
	var all []string
	all = append(all, k.Pain...)
	all = append(all, k.Need...)
	all = append(all, k.RLHF...)
	all = append(all, k.Competitor...)
	all = append(all, k.Frustration...)
	all = append(all, k.Synthetic...)
	all = append(all, k.Budget...)
	return all
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Claude.APIKey = v
	}
	if v := os.Getenv(claudeModelEnv); v != "" {
		c.Claude.Model = v
	}
	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Sources.Reddit.ClientID = v
	}
	if v := os.Getenv(redditClientSecretEnv); v != "" {
		c.Sources.Reddit.ClientSecret = v
	}
	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Sources.Reddit.UserAgent = v
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Sources.GitHub.Token = v
	}
	if v := os.Getenv(hfTokenEnv); v != "" {
		c.Sources.HuggingFace.Token = v
	}
	if v := os.Getenv(slackWebhookURLEnv); v != "" {
		c.Slack.WebhookURL = v
	}
	if v := os.Getenv(slackUserIDEnv); v != "" {
		c.Slack.UserID = v
	}
	if v := os.Getenv(outreachLogEnv); v != "" {
		c.Outreach.LogPath = v
	}
	if v := os.Getenv(scoreThresholdEnv); v != "" {
		if threshold, err := strconv.Atoi(v); err == nil {
			c.Scoring.Threshold = threshold
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", scoreThresholdEnv, v, c.Scoring.Threshold)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.Path != "" {
		base.Database = override.Database
	}
	if override.Scheduler.Interval != "" {
		base.Scheduler = override.Scheduler
	}

	if override.Scoring.Threshold != 0 {
		base.Scoring.Threshold = override.Scoring.Threshold
	}
	if override.Scoring.PacingDelay != "" {
		base.Scoring.PacingDelay = override.Scoring.PacingDelay
	}

	if override.Claude.Endpoint != "" {
		base.Claude.Endpoint = override.Claude.Endpoint
	}
	if override.Claude.Model != "" {
		base.Claude.Model = override.Claude.Model
	}
	if override.Claude.APIKey != "" {
		base.Claude.APIKey = override.Claude.APIKey
	}
	if override.Claude.MaxTokens != 0 {
		base.Claude.MaxTokens = override.Claude.MaxTokens
	}

	if override.Slack.WebhookURL != "" {
		base.Slack.WebhookURL = override.Slack.WebhookURL
	}
	if override.Slack.UserID != "" {
		base.Slack.UserID = override.Slack.UserID
	}

	if override.Outreach.LogPath != "" {
		base.Outreach = override.Outreach
	}

	base.Sources = mergeSources(base.Sources, override.Sources)

	if len(override.Keywords.All()) > 0 {
		base.Keywords = override.Keywords
	}

	return base
}

func mergeSources(base, override SourcesConfig) SourcesConfig {
	if override.Reddit.ClientID != "" {
		base.Reddit.ClientID = override.Reddit.ClientID
	}
	if override.Reddit.ClientSecret != "" {
		base.Reddit.ClientSecret = override.Reddit.ClientSecret
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if len(override.Reddit.Subreddits) > 0 {
		base.Reddit.Subreddits = override.Reddit.Subreddits
	}
	if override.Reddit.LookbackHours != 0 {
		base.Reddit.LookbackHours = override.Reddit.LookbackHours
	}

	if override.GitHub.Token != "" {
		base.GitHub.Token = override.GitHub.Token
	}
	if len(override.GitHub.SearchQueries) > 0 {
		base.GitHub.SearchQueries = override.GitHub.SearchQueries
	}
	if len(override.GitHub.PriorityRepos) > 0 {
		base.GitHub.PriorityRepos = override.GitHub.PriorityRepos
	}
	if override.GitHub.LookbackDays != 0 {
		base.GitHub.LookbackDays = override.GitHub.LookbackDays
	}

	if override.HuggingFace.Token != "" {
		base.HuggingFace.Token = override.HuggingFace.Token
	}
	if len(override.HuggingFace.WatchedDatasets) > 0 {
		base.HuggingFace.WatchedDatasets = override.HuggingFace.WatchedDatasets
	}
	if len(override.HuggingFace.SearchTerms) > 0 {
		base.HuggingFace.SearchTerms = override.HuggingFace.SearchTerms
	}

	if override.AlphaXiv.TrendingURL != "" {
		base.AlphaXiv = override.AlphaXiv
	}
	if override.Digest.FeedURL != "" {
		base.Digest = override.Digest
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{Path: "data/signals.db"},
		Scheduler: SchedulerConfig{Interval: "6h"},
		Scoring:   ScoringConfig{Threshold: 71, PacingDelay: "500ms"},
		Claude: ClaudeConfig{
			Endpoint:  "https://api.anthropic.com/v1/messages",
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 500,
		},
		Outreach: OutreachConfig{LogPath: "../auto-bdr/data/outreach_log.csv"},
		Sources: SourcesConfig{
			Reddit: RedditConfig{
				UserAgent:     "data-deal-monitor/1.0",
				Subreddits:    []string{"MachineLearning", "LocalLLaMA", "SaaS", "indiehackers"},
				LookbackHours: 48,
			},
			GitHub: GitHubConfig{
				SearchQueries: []string{
					`"annotation quality" OR "labeling errors" OR "noisy labels" OR "mislabeled"`,
					`"looking for annotators" OR "need labeled data" OR "annotation service" OR "data labeling vendor"`,
					`"RLHF data" OR "preference data" OR "reward model" OR "human evaluation"`,
					`"synthetic data quality" OR "model collapse" OR "LLM-generated training data"`,
					`"cost of labeling" OR "annotation cost" OR "labeling budget"`,
				},
				PriorityRepos: []string{
					"HumanSignal/label-studio",
					"argilla-io/argilla",
					"opencv/cvat",
					"EleutherAI/lm-evaluation-harness",
				},
				LookbackDays: 2,
			},
			HuggingFace: HuggingFaceConfig{
				WatchedDatasets: []string{
					"tatsu-lab/alpaca_eval",
					"lmsys/chatbot_arena_conversations",
					"HuggingFaceH4/ultrafeedback_binarized",
				},
				SearchTerms: []string{"annotation", "RLHF", "preference", "human-labeled", "evaluation"},
			},
			AlphaXiv: AlphaXivConfig{TrendingURL: "https://alphaxiv.org/explore"},
			Digest:   DigestConfig{FeedURL: ""},
		},
		Keywords: defaultKeywords(),
	}
}

func defaultKeywords() KeywordConfig {
	return KeywordConfig{
		Pain: []string{
			"annotation quality", "labeling errors", "noisy labels",
			"inconsistent annotations", "bad labels", "label noise",
			"ground truth", "mislabeled", "inter-annotator agreement",
			"annotation disagreement",
		},
		Need: []string{
			"looking for annotators", "need labeled data", "labeling service",
			"annotation service", "data labeling vendor", "outsource annotation",
			"human evaluation", "need human raters",
		},
		RLHF: []string{
			"RLHF data", "preference data", "human feedback", "reward model",
			"DPO training data", "human evaluation", "red teaming",
			"alignment data", "constitutional AI",
		},
		Competitor: []string{
			"Scale AI", "Labelbox", "Snorkel", "Appen", "Surge AI", "Toloka",
			"MTurk", "Mechanical Turk", "SageMaker Ground Truth",
		},
		Frustration: []string{
			"stuck", "struggling", "failing", "doesn't work", "tried everything",
			"wasted", "threw out", "had to redo", "blocking", "bottleneck",
		},
		Synthetic: []string{
			"synthetic data quality", "model collapse", "GPT-generated data",
			"synthetic vs human", "distillation not working",
			"LLM-generated training data",
		},
		Budget: []string{
			"cost of labeling", "labeling budget", "annotation cost",
			"too expensive", "affordable labeling", "cost per label",
		},
	}
}
