package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	speechmodel "github.com/numan-developer-2/Customer-Support-Agent/internal/model/speech"
)

const (
	defaultAPIURL     = "http://localhost:8000"
	defaultTimeout    = 60
	defaultMaxRetries = 1
	stateDirName      = ".supportdesk"
)

// Config 聚合客户端与开发服务的配置项。
type Config struct {
	Server ServerConfig
	API    APIConfig
	Store  StoreConfig
	Audio  AudioConfig
	UI     UIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	api, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	audio, err := loadAudioConfig()
	if err != nil {
		return nil, err
	}

	ui := loadUIConfig(store.Dir)

	return &Config{Server: server, API: api, Store: store, Audio: audio, UI: ui}, nil
}

// ServerConfig 描述开发用 HTTP 服务配置。
type ServerConfig struct {
	Addr     string
	AudioDir string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	audioDir := getEnvOrDefault("DEVSERVER_AUDIO_DIR", filepath.Join(os.TempDir(), "supportdesk-audio"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8000" 或 "127.0.0.1:8000"。
		return ServerConfig{Addr: port, AudioDir: audioDir}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AudioDir: audioDir}, nil
}

// APIConfig 描述远端客服服务。
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func loadAPIConfig() (APIConfig, error) {
	base := strings.TrimRight(getEnvOrDefault("SUPPORTDESK_API_URL", defaultAPIURL), "/")

	timeoutSeconds := defaultTimeout
	if override, err := parseOptionalIntEnv("SUPPORTDESK_TIMEOUT"); err != nil {
		return APIConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	retries := defaultMaxRetries
	if override, err := parseOptionalIntEnv("SUPPORTDESK_MAX_RETRIES"); err != nil {
		return APIConfig{}, err
	} else if override != nil {
		if *override < 0 {
			retries = 0
		} else {
			retries = *override
		}
	}

	return APIConfig{
		BaseURL:    base,
		Timeout:    time.Duration(timeoutSeconds) * time.Second,
		MaxRetries: retries,
		RetryDelay: time.Second,
	}, nil
}

// StoreConfig 描述本地身份存储位置。
type StoreConfig struct {
	Dir  string
	Path string
}

func loadStoreConfig() (StoreConfig, error) {
	path := strings.TrimSpace(os.Getenv("SUPPORTDESK_STATE_FILE"))
	if path != "" {
		return StoreConfig{Dir: filepath.Dir(path), Path: path}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return StoreConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, stateDirName)
	return StoreConfig{Dir: dir, Path: filepath.Join(dir, "state.json")}, nil
}

// AudioConfig 描述录音与播放。
type AudioConfig struct {
	Input    string
	Format   speechmodel.Format
	FFmpeg   string
	Player   string
	PlayerOn bool
}

func loadAudioConfig() (AudioConfig, error) {
	format := speechmodel.DefaultFormat()

	if rate, err := parseOptionalIntEnv("SUPPORTDESK_SAMPLE_RATE"); err != nil {
		return AudioConfig{}, err
	} else if rate != nil {
		if *rate < 8000 {
			return AudioConfig{}, fmt.Errorf("invalid SUPPORTDESK_SAMPLE_RATE value %d: must be at least 8000", *rate)
		}
		format.SampleRate = *rate
	}

	if channels, err := parseOptionalIntEnv("SUPPORTDESK_CHANNELS"); err != nil {
		return AudioConfig{}, err
	} else if channels != nil {
		if *channels < 1 || *channels > 2 {
			return AudioConfig{}, fmt.Errorf("invalid SUPPORTDESK_CHANNELS value %d", *channels)
		}
		format.Channels = *channels
	}

	encoding, err := speechmodel.ParseEncoding(os.Getenv("SUPPORTDESK_AUDIO_ENCODING"))
	if err != nil {
		return AudioConfig{}, err
	}
	format.Encoding = encoding

	playback, err := parseBoolEnv("SUPPORTDESK_PLAYBACK", true)
	if err != nil {
		return AudioConfig{}, err
	}

	return AudioConfig{
		Input:    strings.TrimSpace(os.Getenv("SUPPORTDESK_MIC_INPUT")),
		Format:   format,
		FFmpeg:   getEnvOrDefault("SUPPORTDESK_FFMPEG", "ffmpeg"),
		Player:   getEnvOrDefault("SUPPORTDESK_PLAYER", "ffplay"),
		PlayerOn: playback,
	}, nil
}

// UIConfig 描述界面语言与日志文件。
type UIConfig struct {
	Locale  string
	LogFile string
}

func loadUIConfig(stateDir string) UIConfig {
	return UIConfig{
		Locale:  getEnvOrDefault("SUPPORTDESK_LOCALE", "hi"),
		LogFile: getEnvOrDefault("SUPPORTDESK_LOG_FILE", filepath.Join(stateDir, "supportdesk.log")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
