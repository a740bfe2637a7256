package config

import (
	"flag"
	"io/ioutil"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
	"moff.io/dapp-demo/pkg/errors"
)

// Provider kinds accepted by wallet.provider.
const (
	ProviderNone          = "none"
	ProviderSimulated     = "simulated"
	ProviderRPC           = "rpc"
	ProviderWalletConnect = "walletconnect"
)

// Configuration struct
type Configuration struct {
	Environment string    `yaml:"environment"`
	LogLevel    int       `yaml:"log_level"`
	Locale      string    `yaml:"locale"`
	Server      Server    `yaml:"server"`
	Wallet      Wallet    `yaml:"wallet"`
	Panels      Panels    `yaml:"panels"`
	Kafka       Kafka     `yaml:"kafka"`
	Reporters   Reporters `yaml:"reporters"`
}

type Server struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Wallet struct {
	// Provider is one of none, simulated, rpc, walletconnect.
	Provider       string        `yaml:"provider"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Simulated      Simulated     `yaml:"simulated"`
	RPC            RPC           `yaml:"rpc"`
	WalletConnect  WalletConnect `yaml:"walletconnect"`
}

type Simulated struct {
	Delay         time.Duration `yaml:"delay"`
	Accounts      []string      `yaml:"accounts"`
	ChainID       string        `yaml:"chain_id"`
	PreAuthorized bool          `yaml:"pre_authorized"`
}

type RPC struct {
	URL               string        `yaml:"url"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
}

type WalletConnect struct {
	// BridgeURL empty means a random public bridge.
	BridgeURL   string        `yaml:"bridge_url"`
	QRCodePath  string        `yaml:"qr_code_path"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	DappName    string        `yaml:"dapp_name"`
	DappURL     string        `yaml:"dapp_url"`
}

type Panels struct {
	Upload   Upload   `yaml:"upload"`
	Registry Registry `yaml:"registry"`
	NodeID   int64    `yaml:"node_id"`
}

type Upload struct {
	MaxBytes      int64         `yaml:"max_bytes"`
	StepDelay     time.Duration `yaml:"step_delay"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

type Registry struct {
	Delay time.Duration `yaml:"delay"`
}

type Kafka struct {
	// Servers is a comma separated broker list, empty disables the sink.
	Servers string `yaml:"servers"`
	Topic   string `yaml:"topic"`
}

type Reporters struct {
	SentryDSN       string        `yaml:"sentry_dsn"`
	LarkWebhook     string        `yaml:"lark_webhook"`
	DingTalkWebhook string        `yaml:"dingtalk_webhook"`
	DingTalkSecret  string        `yaml:"dingtalk_secret"`
	SilentPerStack  time.Duration `yaml:"silent_per_stack"`
}

// Default returns the configuration used for every field a file omits.
func Default() Configuration {
	return Configuration{
		Environment: "local",
		LogLevel:    1,
		Locale:      "en",
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: time.Minute,
		},
		Wallet: Wallet{
			Provider:       ProviderSimulated,
			RequestTimeout: 5 * time.Minute,
			Simulated: Simulated{
				Delay:    time.Second,
				Accounts: []string{"0xMockAccount1234567890abcdef"},
				ChainID:  "0x1",
			},
			RPC: RPC{
				URL:               "http://127.0.0.1:8545",
				PollInterval:      4 * time.Second,
				RequestsPerSecond: 20,
			},
			WalletConnect: WalletConnect{
				QRCodePath:  "wallet_connect_qr.png",
				ReadTimeout: 5 * time.Minute,
				DappName:    "dapp-demo",
			},
		},
		Panels: Panels{
			Upload: Upload{
				MaxBytes:      5 * 1024 * 1024,
				StepDelay:     100 * time.Millisecond,
				MaxConcurrent: 4,
			},
			Registry: Registry{Delay: 2 * time.Second},
			NodeID:   1,
		},
		Kafka: Kafka{Topic: "wallet_session_events"},
		Reporters: Reporters{
			SilentPerStack: time.Minute,
		},
	}
}

// Load reads the YAML file at path on top of Default().
func Load(path string) (Configuration, error) {
	logrus.Infof("Loading configuration file from %s", path)
	dat, err := ioutil.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(dat)
}

// Parse decodes YAML data on top of Default().
func Parse(data []byte) (Configuration, error) {
	t := Default()
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return Configuration{}, errors.Wrap(err, "decode config")
	}
	if err := t.Validate(); err != nil {
		return Configuration{}, err
	}
	return t, nil
}

// Validate rejects values no component can run with.
func (c *Configuration) Validate() error {
	switch c.Wallet.Provider {
	case ProviderNone, ProviderSimulated, ProviderRPC, ProviderWalletConnect:
	default:
		return errors.Errorf("unknown wallet provider %q", c.Wallet.Provider)
	}
	if c.Wallet.Provider == ProviderRPC && c.Wallet.RPC.URL == "" {
		return errors.New("wallet.rpc.url is required for the rpc provider")
	}
	if c.Panels.Upload.MaxBytes <= 0 {
		return errors.New("panels.upload.max_bytes must be positive")
	}
	if c.Kafka.Servers != "" && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.servers is set")
	}
	return nil
}

var Global *Configuration

// Read reads configuration information from yml.
func Read() {
	configFilePath := flag.String("config-path", "internal/config/config.yml", "The path to the configuration file")
	flag.Parse()
	globalConfig, err := Load(*configFilePath)
	if err != nil {
		logrus.Fatal(err)
	}
	Global = &globalConfig
}
