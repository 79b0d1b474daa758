// Package configs loads config.yml and layers the executor's environment
// variable overrides on top of it, mirroring the teacher's
// configs.LoadConfig + ENC_PK/KEY env-var-on-top-of-YAML pattern.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Nilupul-byte/limitorderdex/internal/executor"
)

// Config is the entire config.yml shape: RPC/AMM endpoints, the deployed
// contract, and the executor's tunables.
type Config struct {
	RPC         string           `yaml:"rpc"`
	AMMQueryURL string           `yaml:"amm_query_url"`
	Contract    ContractYAMLData `yaml:"contract"`
	Executor    ExecutorYAMLData `yaml:"executor"`
}

// ContractYAMLData locates the deployed order contract and its ABI, the
// same shape as the teacher's ContractClientYAMLData.
type ContractYAMLData struct {
	Address string `yaml:"address"`
	ABI     string `yaml:"abi"`
}

// ExecutorYAMLData is the YAML-shaped form of the sweep loop's tunables
// (§6 of the spec); env vars of the same name override these at startup.
type ExecutorYAMLData struct {
	CheckIntervalS  int    `yaml:"check_interval_s"`
	CooldownS       int    `yaml:"cooldown_s"`
	OperatorKeyPath string `yaml:"operator_key_path"`
	ExecGas         uint64 `yaml:"exec_gas"`
	Enabled         bool   `yaml:"enabled"`
}

// LoadConfig reads and parses config.yml into a Config struct.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// The executor is enabled unless config.yml or ENABLE_EXECUTOR turns
	// it off; yaml.Unmarshal leaves fields absent from the file untouched.
	config := Config{Executor: ExecutorYAMLData{Enabled: true}}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	config.applyEnvOverrides()
	return &config, nil
}

// applyEnvOverrides layers the §6 environment variables on top of the YAML
// defaults, exactly the way the teacher layers ENC_PK/KEY on top of
// config.yml's rpc/contract_client block.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHECK_INTERVAL_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Executor.CheckIntervalS = n
		}
	}
	if v := os.Getenv("COOLDOWN_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Executor.CooldownS = n
		}
	}
	if v := os.Getenv("OPERATOR_KEY_PATH"); v != "" {
		c.Executor.OperatorKeyPath = v
	}
	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" {
		c.Contract.Address = v
	}
	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		c.RPC = v
	}
	if v := os.Getenv("AMM_QUERY_URL"); v != "" {
		c.AMMQueryURL = v
	}
	if v := os.Getenv("EXEC_GAS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Executor.ExecGas = n
		}
	}
	if v := os.Getenv("ENABLE_EXECUTOR"); v != "" {
		c.Executor.Enabled = v != "false" && v != "0"
	}
}

// ToExecutorConfig translates the YAML-shaped executor tunables into
// executor.Config. A zero CheckIntervalS or CooldownS falls back to
// DefaultConfig's value; Enabled is copied as given (LoadConfig presets it
// to true), so a config.yml that omits the executor block entirely still
// produces sane values.
func (c *Config) ToExecutorConfig() executor.Config {
	cfg := executor.DefaultConfig()
	if c.Executor.CheckIntervalS > 0 {
		cfg.CheckInterval = time.Duration(c.Executor.CheckIntervalS) * time.Second
	}
	if c.Executor.CooldownS > 0 {
		cfg.Cooldown = time.Duration(c.Executor.CooldownS) * time.Second
	}
	cfg.Enabled = c.Executor.Enabled
	return cfg
}

// ExecGasOrDefault returns the configured gas budget, defaulting to the
// spec's ~80M reference-chain sizing for the cross-shard async swap when
// unset.
func (c *Config) ExecGasOrDefault() uint64 {
	if c.Executor.ExecGas > 0 {
		return c.Executor.ExecGas
	}
	return 80_000_000
}
