package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency" validate:"required"`
	BodyLimit   int    `koanf:"body_limit" validate:"required"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleServer  Module = "server"
	ModuleSetting Module = "setting"
	ModuleChunk   Module = "chunk"
	ModuleChunker Module = "chunker"
	ModuleEmbed   Module = "embed"
	ModuleFetch   Module = "fetch"
	ModuleHealth  Module = "health"
	ModuleOpenAI  Module = "openai"
	ModuleS3      Module = "s3"
	ModuleCors    Module = "cors"
)

type openaiConfig struct {
	Key            string `koanf:"key"`
	EmbeddingModel string `koanf:"embedding_model" validate:"required"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

// chunkerConfig holds the default chunking budgets; each may be overridden
// per request through the /chunk body.
type chunkerConfig struct {
	OverlapTokens       int     `koanf:"overlap_tokens" validate:"gte=0"`
	MaxChunkTokens      int     `koanf:"max_chunk_tokens" validate:"required,gt=0"`
	MinChunkTokens      int     `koanf:"min_chunk_tokens" validate:"gte=0"`
	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
	TokenizerEncoding   string  `koanf:"tokenizer_encoding" validate:"required"`
	UseSentenceModel    bool    `koanf:"use_sentence_model"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region" validate:"required"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

type config struct {
	Server   serverConfig  `koanf:"server"`
	OpenAI   openaiConfig  `koanf:"openai"`
	LogLevel logLevel      `koanf:"log_level"`
	Cors     corsConfig    `koanf:"cors"`
	Chunker  chunkerConfig `koanf:"chunker"`
	S3       s3Config      `koanf:"s3"`
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 256,
		BodyLimit:   10 << 20,
		AppName:     "math-professor-rag",
	},
	OpenAI: openaiConfig{
		Key:            "",
		EmbeddingModel: "text-embedding-3-small",
	},
	LogLevel: Info,
	Cors: corsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	},
	Chunker: chunkerConfig{
		OverlapTokens:       150,
		MaxChunkTokens:      512,
		MinChunkTokens:      50,
		SimilarityThreshold: 0.7,
		TokenizerEncoding:   "cl100k_base",
		UseSentenceModel:    true,
	},
	S3: s3Config{
		Endpoint:  "",
		AccessKey: "",
		SecretKey: "",
		Region:    "us-east-1",
		UseSSL:    true,
		Bucket:    "",
	},
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// Init loads configuration from the given yaml path plus APP_ environment
// overrides, then validates. Only the first call loads; later calls are no-ops.
func Init(path string) error {
	var initErr error
	once.Do(func() {
		k := koanf.New(".")

		validate := validator.New()
		// defaults
		Cfg = defaultConfig

		// file
		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil && !os.IsNotExist(e) {
			initErr = e
			return
		}

		// env APP_SERVER_PORT
		if e := k.Load(env.Provider("APP_", ".", func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, "APP_"))
		}), nil); e != nil {
			initErr = e
			return
		}

		// bind
		if e := k.Unmarshal("", &Cfg); e != nil {
			log.Errorf("failed to unmarshal config: %v", e)
			initErr = e
			return
		}

		// validate config
		if err := validate.Struct(Cfg); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok {
				var sb strings.Builder
				sb.WriteString(fmt.Sprintf("%v Config validation failed:\n", ModuleSetting))

				for _, e := range errs {
					sb.WriteString(
						fmt.Sprintf("  - %s: failed '%s' (value: %v)\n", e.Field(), e.Tag(), e.Value()),
					)
				}

				log.Error(sb.String())
			} else {
				log.Errorf("config validation failed: %v", err)
			}
			initErr = err
		}
	})
	return initErr
}

func init() {
	_ = Init("config.yaml")
}
