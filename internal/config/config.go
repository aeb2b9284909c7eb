package config

import (
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env     string
	Debug   bool
	LogPath string

	ApiPort string
	ApiUrl  string
	Caller  string

	Nft         NftConfig
	Marketplace MarketplaceConfig
	DevAccounts DevAccountsConfig
	Metadata    MetadataConfig
}

type NftConfig struct {
	Name   string
	Symbol string
}

type MarketplaceConfig struct {
	FeePercent        uint64
	OverpaymentPolicy string
}

type DevAccountsConfig struct {
	Count   int
	Balance string
}

type MetadataConfig struct {
	IpfsGateway string
	Retries     int
	Timeout     int
	CacheTTL    int
	MaxBytes    int64
}

var fileConfig = viper.New()

// Init loads .env and the optional CONFIG_FILE, then installs the logger.
// Environment variables take precedence over the config file.
func Init(name string) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.L().With(zap.Error(err)).Fatal("Unable to init config")
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileConfig.SetConfigFile(path)
		if err := fileConfig.ReadInConfig(); err != nil {
			zap.L().With(zap.Error(err), zap.String("file", path)).Fatal("Unable to read config file")
		}
	}

	initLogger(name)
}

func initLogger(name string) {
	path := Get().LogPath
	if path != "" {
		path = strings.ReplaceAll(path, "{name}", name)
	}
	log.NewLogger(path, Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:     getString("ENV", "dev"),
		Debug:   getBool("DEBUG", false),
		LogPath: getString("LOG_PATH", ""),
		ApiPort: getString("API_PORT", "8080"),
		ApiUrl:  getString("API_URL", "http://localhost:8080"),
		Caller:  getString("CALLER", ""),
		Nft: NftConfig{
			Name:   getString("NFT_NAME", "Square NFT"),
			Symbol: getString("NFT_SYMBOL", "Square"),
		},
		Marketplace: MarketplaceConfig{
			FeePercent:        getUint64("FEE_PERCENT", 1),
			OverpaymentPolicy: getString("OVERPAYMENT_POLICY", "fee"),
		},
		DevAccounts: DevAccountsConfig{
			Count:   getInt("DEV_ACCOUNTS", 20),
			Balance: getString("DEV_ACCOUNT_BALANCE", "10000"),
		},
		Metadata: MetadataConfig{
			IpfsGateway: strings.TrimRight(getString("IPFS_GATEWAY", "https://gateway.pinata.cloud"), "/"),
			Retries:     getInt("METADATA_RETRIES", 3),
			Timeout:     getInt("METADATA_TIMEOUT", 10),
			CacheTTL:    getInt("METADATA_CACHE_TTL", 300),
			MaxBytes:    int64(getUint64("METADATA_MAX_BYTES", 10<<20)),
		},
	}
}

func (c MetadataConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c MetadataConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if fileConfig.IsSet(key) {
		return fileConfig.GetString(key)
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, accuracy := val.Int64()
	if !val.IsInt() || accuracy != big.Exact {
		return defaultValue
	}

	return int(intVal)
}

func getUint64(key string, defaultValue uint) uint64 {
	val := getInt(key, int(defaultValue))
	if val < 0 {
		return uint64(defaultValue)
	}

	return uint64(val)
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}
