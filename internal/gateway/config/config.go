package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	Env     string
	Store   StoreConfig
	Media   MediaConfig
	Preview PreviewConfig
	// StudioConfig optionally points at a yaml file with scaffold
	// defaults (fps, dimensions, duration).
	StudioConfig string
}

type StoreConfig struct {
	DSN      string
	FilePath string
}

type MediaConfig struct {
	GeminiAPIKey string
	SpeechModel  string
	SpeechVoice  string
	ImageModel   string
	SoundBaseURL string
	SoundToken   string
	Asset        AssetConfig
}

type AssetConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Dir       string
}

type PreviewConfig struct {
	PortMin      int
	PortMax      int
	ProjectsRoot string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		Store: StoreConfig{
			DSN:      strings.TrimSpace(os.Getenv("FRAMEWRIGHT_PG_DSN")),
			FilePath: firstNonEmpty(strings.TrimSpace(os.Getenv("FRAMEWRIGHT_STORE_PATH")), "data/projects.json"),
		},
		Media:        loadMediaConfig(env),
		Preview:      loadPreviewConfig(),
		StudioConfig: strings.TrimSpace(os.Getenv("FRAMEWRIGHT_CONFIG")),
	}, nil
}

func loadMediaConfig(env string) MediaConfig {
	return MediaConfig{
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		SpeechModel:  strings.TrimSpace(os.Getenv("FRAMEWRIGHT_SPEECH_MODEL")),
		SpeechVoice:  strings.TrimSpace(os.Getenv("FRAMEWRIGHT_SPEECH_VOICE")),
		ImageModel:   strings.TrimSpace(os.Getenv("FRAMEWRIGHT_IMAGE_MODEL")),
		SoundBaseURL: firstNonEmpty(strings.TrimSpace(os.Getenv("FREESOUND_API_URL")), "https://freesound.org/apiv2"),
		SoundToken:   strings.TrimSpace(os.Getenv("FREESOUND_API_TOKEN")),
		Asset:        loadAssetConfig(env),
	}
}

func loadAssetConfig(env string) AssetConfig {
	endpoint := resolveAssetEndpoint(env)
	return AssetConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ASSET_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ASSET_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ASSET_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ASSET_S3_BUCKET")), "framewright-assets"),
		UseSSL:    resolveAssetUseSSL(env),
		Dir:       firstNonEmpty(strings.TrimSpace(os.Getenv("FRAMEWRIGHT_ASSET_DIR")), "data/assets"),
	}
}

func resolveAssetEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ASSET_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ASSET_S3_ENDPOINT"))
}

func resolveAssetUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ASSET_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func loadPreviewConfig() PreviewConfig {
	return PreviewConfig{
		PortMin:      envInt("FRAMEWRIGHT_PREVIEW_PORT_MIN", 3000),
		PortMax:      envInt("FRAMEWRIGHT_PREVIEW_PORT_MAX", 3099),
		ProjectsRoot: firstNonEmpty(strings.TrimSpace(os.Getenv("FRAMEWRIGHT_PROJECTS_ROOT")), "projects"),
	}
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
