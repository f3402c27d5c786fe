package config

import (
	"os"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// PipelineConfig represents the configuration for the classification pipeline
type PipelineConfig struct {
	SpamSkipThreshold    int
	SummaryMinImportance int
	MaxWorkers           int
	WhitelistedDomains   []string
}

// DigestConfig represents the configuration for the digest report
type DigestConfig struct {
	TopK               int
	SpamScoreThreshold int
	MinSpamCount       int
}

// MailConfig selects the mailbox and delivery adapters
type MailConfig struct {
	Source string
	Sender string
}

// GmailConfig represents the configuration for the Gmail API adapters
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
}

// IMAPConfig represents the configuration for the IMAP mail source
type IMAPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

// SMTPConfig represents the configuration for the SMTP mail sender
type SMTPConfig struct {
	Addr     string
	Username string
	Password string
	From     string
	TLS      bool
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetPipeline returns the classification pipeline configuration
func (c *Config) GetPipeline() PipelineConfig {
	return PipelineConfig{
		SpamSkipThreshold:    c.GetInt("pipeline.spam_skip_threshold"),
		SummaryMinImportance: c.GetInt("pipeline.summary_min_importance"),
		MaxWorkers:           c.GetInt("pipeline.max_workers"),
		WhitelistedDomains:   c.GetStringSlice("pipeline.whitelisted_domains"),
	}
}

// GetDigest returns the digest report configuration
func (c *Config) GetDigest() DigestConfig {
	return DigestConfig{
		TopK:               c.GetInt("digest.top_k"),
		SpamScoreThreshold: c.GetInt("digest.spam_score_threshold"),
		MinSpamCount:       c.GetInt("digest.min_spam_count"),
	}
}

// GetMail returns the mail adapter selection
func (c *Config) GetMail() MailConfig {
	return MailConfig{
		Source: c.GetString("mail.source"),
		Sender: c.GetString("mail.sender"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		ClientID:     c.GetString("gmail.client_id"),
		ClientSecret: c.GetString("gmail.client_secret"),
		RedirectURL:  c.GetString("gmail.redirect_url"),
		TokenPath:    os.ExpandEnv(c.GetString("gmail.token_path")),
	}
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Host:     c.GetString("imap.host"),
		Port:     c.GetString("imap.port"),
		Username: c.GetString("imap.username"),
		Password: c.GetString("imap.password"),
		TLS:      c.GetBool("imap.tls"),
	}
}

// GetSMTP returns the SMTP configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Addr:     c.GetString("smtp.addr"),
		Username: c.GetString("smtp.username"),
		Password: c.GetString("smtp.password"),
		From:     c.GetString("smtp.from"),
		TLS:      c.GetBool("smtp.tls"),
	}
}
