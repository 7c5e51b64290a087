// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/nicholasgasior/docx2md"
	"github.com/nicholasgasior/docx2md/internal/vlm"
)

var version = "dev"

const (
	envEndpoint = "DOCX2MD_CAPTION_ENDPOINT"
	envAPIKey   = "DOCX2MD_CAPTION_KEY"
	envModel    = "DOCX2MD_CAPTION_MODEL"
)

// captionFlags are shared by both modes.
type captionFlags struct {
	endpoint string
	apiKey   string
	model    string
	prompt   string
	timeout  time.Duration
}

func (c *captionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.endpoint, "endpoint", os.Getenv(envEndpoint), "Vision API base URL (env "+envEndpoint+")")
	fs.StringVar(&c.apiKey, "api-key", os.Getenv(envAPIKey), "Vision API key (env "+envAPIKey+")")
	fs.StringVar(&c.model, "model", os.Getenv(envModel), "Vision model name (env "+envModel+")")
	fs.StringVar(&c.prompt, "prompt", "", "Captioning prompt (default: built-in)")
	fs.DurationVar(&c.timeout, "timeout", 60*time.Second, "Timeout per captioning request")
}

func (c *captionFlags) captioner() *vlm.Client {
	client := vlm.NewClient(c.endpoint, c.apiKey, c.model, c.timeout)
	if c.prompt != "" {
		client.Prompt = c.prompt
	}
	return client
}

type logFlags struct {
	level  string
	format string
}

func (l *logFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.level, "log-level", "warn", "Log level: debug, info, warn, error")
	fs.StringVar(&l.format, "log-format", "console", "Log format: console, json")
}

func (l *logFlags) logger() (glog.Logger, error) {
	options := []glog.Option{}
	switch strings.ToLower(strings.TrimSpace(l.level)) {
	case "debug":
		options = append(options, glog.WithLevel(glog.Debug))
	case "info":
		options = append(options, glog.WithLevel(glog.Info))
	case "", "warn", "warning":
		options = append(options, glog.WithLevel(glog.Warn))
	case "error":
		options = append(options, glog.WithLevel(glog.Error))
	default:
		return nil, fmt.Errorf("unsupported log level %q", l.level)
	}
	switch strings.ToLower(strings.TrimSpace(l.format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	default:
		return nil, fmt.Errorf("unsupported log format %q", l.format)
	}
	return glog.NewLogger(options...).GetLogger("docx2md"), nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "captions" {
		os.Exit(runCaptions(os.Args[2:]))
	}
	os.Exit(runConvert(os.Args[1:]))
}

func runConvert(args []string) int {
	fs := flag.NewFlagSet("docx2md", flag.ExitOnError)
	var (
		outputDir   string
		assetDir    string
		placeholder string
		headings    string
		caption     bool
		noAltChunks bool
		workbooks   bool
		showVersion bool
		cf          captionFlags
		lf          logFlags
	)
	fs.StringVar(&outputDir, "o", "", "Output directory (default: print to stdout)")
	fs.StringVar(&outputDir, "output", "", "Output directory (default: print to stdout)")
	fs.StringVar(&assetDir, "a", "", "Image directory (default: <output>/images_<name>)")
	fs.StringVar(&assetDir, "assets", "", "Image directory (default: <output>/images_<name>)")
	fs.StringVar(&placeholder, "placeholder", docx2md.DefaultPlaceholder, "Caption for images without a description")
	fs.StringVar(&headings, "headings", "", "File with numbered headings, one per line")
	fs.BoolVar(&caption, "caption", false, "Describe images with the vision API")
	fs.BoolVar(&noAltChunks, "no-alt-chunks", false, "Skip imported HTML and text chunks")
	fs.BoolVar(&workbooks, "workbooks", false, "Render embedded Excel objects as tables")
	fs.BoolVar(&showVersion, "v", false, "Show version")
	fs.BoolVar(&showVersion, "version", false, "Show version")
	cf.register(fs)
	lf.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docx2md [flags] input.docx\n")
		fmt.Fprintf(os.Stderr, "       docx2md captions -md file.md -assets dir [-o dir]\n\n")
		fmt.Fprintf(os.Stderr, "Convert Word documents to Markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if showVersion {
		fmt.Printf("docx2md %s\n", version)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger, err := lf.logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	opts := []docx2md.Option{
		docx2md.WithLogger(logger),
		docx2md.WithPlaceholder(placeholder),
		docx2md.WithAltChunks(!noAltChunks),
		docx2md.WithEmbeddedWorkbooks(workbooks),
	}
	if outputDir != "" {
		opts = append(opts, docx2md.WithOutputDir(outputDir))
	}
	if assetDir != "" {
		opts = append(opts, docx2md.WithAssetDir(assetDir))
	}
	if caption {
		if cf.endpoint == "" {
			fmt.Fprintf(os.Stderr, "Error: -caption needs -endpoint or %s\n", envEndpoint)
			return 2
		}
		opts = append(opts, docx2md.WithCaptioner(cf.captioner()))
	}
	if headings != "" {
		list, err := readLines(headings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading headings: %v\n", err)
			return 1
		}
		opts = append(opts, docx2md.WithHeadingSource(docx2md.HeadingList(list)))
	}

	result, err := docx2md.New(opts...).ConvertFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if result.OutputPath == "" {
		fmt.Print(result.Markdown)
		fmt.Println()
		return 0
	}
	logger.Info("markdown written", "file", result.OutputPath, "images", len(result.Images))
	fmt.Fprintln(os.Stderr, result.OutputPath)
	return 0
}

func runCaptions(args []string) int {
	fs := flag.NewFlagSet("docx2md captions", flag.ExitOnError)
	var (
		mdPath   string
		assetDir string
		outDir   string
		cf       captionFlags
		lf       logFlags
	)
	fs.StringVar(&mdPath, "md", "", "Markdown file with caption placeholders")
	fs.StringVar(&assetDir, "assets", "", "Directory holding image_<n>.png files")
	fs.StringVar(&outDir, "o", "", "Output directory (default: current directory)")
	fs.StringVar(&outDir, "output", "", "Output directory (default: current directory)")
	cf.register(fs)
	lf.register(fs)
	fs.Parse(args)

	if mdPath == "" || assetDir == "" {
		fs.Usage()
		return 2
	}
	if cf.endpoint == "" {
		fmt.Fprintf(os.Stderr, "Error: captions needs -endpoint or %s\n", envEndpoint)
		return 2
	}
	logger, err := lf.logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	out, err := docx2md.CaptionMarkdownFile(mdPath, assetDir, outDir, cf.captioner())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("captions merged", "file", out)
	fmt.Println(out)
	return 0
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
