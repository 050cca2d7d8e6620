package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/tsinghua-fib-lab/agentsociety-household/task"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	version = "dev"

	// 模拟任务名，用于日志与输出
	job string
	// 配置文件路径
	configPath string
	// 配置文件Base64编码后的数据
	configData string
	// 数据加载input的缓存地址，设置为空则禁用缓存功能
	// 缓存：将MongoDB中的输入按db和col序列化到本地文件系统，并总是先试图从文件系统中加载
	cacheDir string
	// .env文件路径
	envFile string
	// 本程序监听的RPC地址，为空时使用配置
	listenAddr string

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel string

	log = logrus.WithField("module", "household")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "household",
		Short: "Agent-based household sector simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetFormatter(&easy.Formatter{
				TimestampFormat: "2006-01-02 15:04:05.0000",
				LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
			})
			// log: 运行时才修改
			level, ok := logLevels[logLevel]
			if !ok {
				return fmt.Errorf("log.level must be one of trace debug info warn error critical off, got %q", logLevel)
			}
			logrus.SetLevel(level)
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&job, "job", "job0", "the name of the simulation task")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&configData, "config-data", "", "config file base64 encoded data")
	root.PersistentFlags().StringVar(&cacheDir, "cache", "", "input cache dir path (empty means disable cache)")
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with HHSIM_* overrides")
	root.PersistentFlags().StringVar(&logLevel, "log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	root.AddCommand(newRunCmd(), newServeCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the simulation to the end and write outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := loadConfig()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return task.NewContext(job, cacheDir, c).Run(ctx)
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation over RPC, advanced by Step calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := loadConfig()
			addr := listenAddr
			if addr == "" {
				addr = c.Server.Listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return task.NewContext(job, cacheDir, c).Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "RPC listening address, e.g. :51102")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("household", version)
		},
	}
}

// loadConfig 获取配置
// 功能：依次尝试配置文件、Base64配置数据与默认配置，再应用环境变量覆盖
func loadConfig() config.Config {
	var file []byte
	var err error
	if configPath != "" {
		file, err = os.ReadFile(configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if configData != "" {
		file, err = base64.StdEncoding.DecodeString(configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	}
	c := config.Default()
	if file != nil {
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else {
		log.Warn("no config specified, use default config")
	}
	if uri := os.Getenv("HHSIM_MONGO_URI"); uri != "" && c.Output.Mongo.URI == "" {
		c.Output.Mongo.URI = uri
	}
	if uri := os.Getenv("HHSIM_INPUT_URI"); uri != "" && c.Input.URI == "" {
		c.Input.URI = uri
	}
	if path := os.Getenv("HHSIM_SQLITE"); path != "" && c.Output.SQLite.Path == "" {
		c.Output.SQLite.Path = path
	}
	log.Debugf("%+v", c)
	return c
}
