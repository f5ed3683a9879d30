package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env:"ENV" env-default:"local" env-required:"true"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port   string `yaml:"port" env-default:"8000"`
		ApiKey string `yaml:"api_key" env:"API_KEY" env-default:""`
	} `yaml:"listen"`
	SQL struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		HostName string `yaml:"hostname" env-default:"localhost"`
		UserName string `yaml:"username" env-default:"root"`
		Password string `yaml:"password" env:"SQL_PASSWORD" env-default:""`
		Database string `yaml:"database" env-default:"churchhelper"`
		Port     string `yaml:"port" env-default:"3306"`
		Prefix   string `yaml:"prefix" env-default:""`
	} `yaml:"sql"`
	Mongo struct {
		Enabled     bool   `yaml:"enabled" env-default:"false"`
		Host        string `yaml:"host" env-default:"localhost"`
		Port        string `yaml:"port" env-default:"27017"`
		User        string `yaml:"user" env-default:""`
		Password    string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database    string `yaml:"database" env-default:"churchhelper"`
		ExpiredDays int    `yaml:"expired_days" env-default:"90"`
	} `yaml:"mongo"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BotName string `yaml:"bot_name" env-default:""`
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId string `yaml:"admin_id" env-default:""`
	} `yaml:"telegram"`
	WhatsApp struct {
		Enabled    bool   `yaml:"enabled" env-default:"false"`
		AccountSid string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID" env-default:""`
		AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN" env-default:""`
		BaseURL    string `yaml:"base_url" env-default:"https://api.twilio.com"`
		From       string `yaml:"from" env:"WHATSAPP_FROM" env-default:""`
		To         string `yaml:"to" env:"WHATSAPP_TO" env-default:""`
	} `yaml:"whatsapp"`
	AI struct {
		GroqApiKey   string `yaml:"groq_api_key" env:"GROQ_API_KEY" env-default:""`
		GroqModel    string `yaml:"groq_model" env-default:"llama3-8b-8192"`
		GroqURL      string `yaml:"groq_url" env-default:"https://api.groq.com/openai/v1"`
		OpenAIApiKey string `yaml:"openai_api_key" env:"OPENAI_API_KEY" env-default:""`
		OpenAIModel  string `yaml:"openai_model" env-default:"gpt-3.5-turbo"`
		OpenAIURL    string `yaml:"openai_url" env-default:"https://api.openai.com/v1"`
	} `yaml:"ai"`
	Schedule struct {
		Time     string `yaml:"time" env:"SCHEDULE_TIME" env-default:"06:00"`
		Timezone string `yaml:"timezone" env:"TIMEZONE" env-default:"Europe/London"`
	} `yaml:"schedule"`
	RateLimit struct {
		MaxRequests    int `yaml:"max_requests" env-default:"3"`
		WindowHours    int `yaml:"window_hours" env-default:"3"`
		RetentionHours int `yaml:"retention_hours" env-default:"24"`
	} `yaml:"rate_limit"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
