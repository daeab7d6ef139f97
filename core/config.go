package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

// Config is the one-shot application configuration, loaded at startup from
// defaults, an optional config/.env.<env> file and environment variables.
type Config struct {
	AppName  string
	Env      string // DEV (default), TEST, QA, PROD
	Debug    bool
	TestMode bool
	WorkDir  string

	// grading data
	BaseDir    string // root of the grade directory tree
	CourseConf string // path to course.conf; defaults to BaseDir/course.conf

	// mailpipe
	AutoRespond bool
	MaxLate     time.Duration // tolerated lateness before a submission is flagged

	// email
	DefaultFromName string
	DefaultFrom     string
	SendgridApiKey  string

	// error reporting
	RollbarToken string
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFrom}
}

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Alama")
	v.SetDefault("baseDir", ".")
	v.SetDefault("courseConf", "")
	v.SetDefault("autoRespond", false)
	v.SetDefault("maxLate", time.Duration(0))
	v.SetDefault("defaultFromName", "Alama")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	testMode := false
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	courseConf := v.GetString("courseConf")
	if courseConf == "" {
		courseConf = filepath.Join(v.GetString("baseDir"), "course.conf")
	}

	Conf = &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        testMode,
		WorkDir:         wd,
		BaseDir:         v.GetString("baseDir"),
		CourseConf:      courseConf,
		AutoRespond:     v.GetBool("autoRespond"),
		MaxLate:         v.GetDuration("maxLate"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFrom:     v.GetString("defaultFromEmail"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
	}
}

// Getwd tries to find the project root "alama"; falls back to the current
// working directory when run from an installed binary.
// go-test changes the working directory to the test package being run during tests,
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	root := "alama"
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(currDir); err == nil {
			if filepath.Base(currDir) == root && fi.IsDir() {
				return currDir
			}
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
