package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 GROOT_STORAGE_TYPE
const EnvPrefix = "GROOT"

// DirName 配置文件所在的目录名，与仓库元数据目录相同
const DirName = ".groot"

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 读取环境变量 (GROOT_STORAGE_TYPE 等)
	// 要在搜索路径之前，GROOT_REPO_PATH 也会影响下面的仓库目录
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 3. 配置搜索路径
	if cfgFile != "" {
		// 如果用户指定了文件，直接使用
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：
		// 1. 仓库目录下的 .groot (repo.path 已绑定 -C，默认是当前目录)
		viper.AddConfigPath(filepath.Join(viper.GetString("repo.path"), DirName))
		// 2. 用户主目录下的 .groot
		viper.AddConfigPath(filepath.Join(home, DirName))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 只是没找到配置文件不算错，默认值 + 环境变量就够了
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func setDefaults() {
	// 仓库
	viper.SetDefault("repo.path", ".")

	// 存储
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.s3.region", "us-east-1")

	// 缓存
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", 24*time.Hour)
	viper.SetDefault("cache.lru_size", 256)

	// 元数据索引 (为空表示关闭)
	viper.SetDefault("meta.driver", "")
	viper.SetDefault("meta.dsn", "")

	// 日志
	viper.SetDefault("log.level", "warn")
}
