package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	PublicHost      string
	TLS             bool
	GoogleAPIKey    string
	Model           string
	TTSBase         string
	LogFile         string
	LogLevel        string
	WakeWords       []string
	ImageMaxEdge    int
	JPEGQuality     int
	AnalysisTimeout time.Duration
	DedupWindow     int
}

func Load() Config {
	return Config{
		Port:            getenv("PORT", "8080"),
		PublicHost:      getenv("PUBLIC_HOST", ""),
		TLS:             getenv("TLS", "") == "1",
		GoogleAPIKey:    getenv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
		Model:           getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		TTSBase:         getenv("TTS_BASE_URL", ""),
		LogFile:         getenv("LOG_FILE", "logs/asanasense.log"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		WakeWords:       getlist("WAKE_WORDS", []string{"analyze", "analyse", "analyzing", "click", "capture"}),
		ImageMaxEdge:    getint("IMAGE_MAX_EDGE", 768),
		JPEGQuality:     getint("JPEG_QUALITY", 85),
		AnalysisTimeout: getduration("ANALYSIS_TIMEOUT", 45*time.Second),
		DedupWindow:     getint("DEDUP_WINDOW", 32),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return d
	}
	return n
}

func getduration(k string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getlist(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return d
	}
	return out
}
