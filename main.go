package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/config"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// Command line flags
var (
	fileFlag      = flag.String("file", "", "Document to translate (.txt, .md, .docx, .html, .pdf)")
	textFlag      = flag.String("text", "", "Raw text to translate instead of a file")
	sourceFlag    = flag.String("source", "auto", "Source language code, or 'auto' to detect")
	targetFlag    = flag.String("target", "", "Target language code (default from config)")
	toneFlag      = flag.String("tone", "", "Translation tone: professional, legal, technical, medical, creative")
	glossaryFlag  = flag.String("glossary", "", "Path to a JSON glossary file ([{\"original_term\":...,\"target_term\":...}])")
	groundingFlag = flag.Bool("grounding", false, "Allow the model to consult web search for terminology")
	configFlag    = flag.String("config", "", "Config file path (default: "+config.DefaultConfigFileName+" under the user config dir)")
	jsonFlag      = flag.Bool("json", false, "Emit the full chunk sequence as JSON instead of plain text")
)

func printHelp() {
	fmt.Println("retrans - translate office documents while keeping their structure")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  retrans --file <PATH> [options]")
	fmt.Println("  retrans --text <TEXT> [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  retrans --file contract.docx --target de --tone legal")
	fmt.Println("  retrans --file scan.pdf --target en --json")
	fmt.Println("  retrans --text 'Hello world' --target fr")
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *fileFlag == "" && *textFlag == "" {
		printHelp()
		os.Exit(2)
	}

	if err := logger.Init(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	defer logger.Close()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	session, err := NewSessionFromFile(*configFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *fileFlag != "" {
		data, err := os.ReadFile(*fileFlag)
		if err != nil {
			return fmt.Errorf("read %s: %w", *fileFlag, err)
		}
		if err := session.LoadDocument(ctx, *fileFlag, "", data); err != nil {
			return err
		}
	} else {
		session.LoadText(*textFlag)
	}

	if err := session.SetLanguages(*sourceFlag, *targetFlag); err != nil {
		return err
	}
	if *toneFlag != "" {
		if err := session.SetTone(*toneFlag); err != nil {
			return err
		}
	}
	if *glossaryFlag != "" {
		items, err := loadGlossary(*glossaryFlag)
		if err != nil {
			return err
		}
		if err := session.SetGlossary(items); err != nil {
			return err
		}
	}
	if *groundingFlag {
		if err := session.SetGrounding(true); err != nil {
			return err
		}
	}

	err = session.Translate(ctx, func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\rtranslating... %d/%d chunks", completed, total)
		if completed == total {
			fmt.Fprintln(os.Stderr)
		}
	})
	if err != nil {
		return err
	}

	chunks := session.Chunks()
	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	fmt.Print(renderText(chunks))
	return nil
}

// loadGlossary reads a glossary file as a JSON array of term pairs.
func loadGlossary(path string) ([]chunk.GlossaryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary %s: %w", path, err)
	}
	var items []chunk.GlossaryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse glossary %s: %w", path, err)
	}
	return items, nil
}

// renderText flattens a translated chunk sequence into plain text. Cells
// of one table row are joined with tabs; empty-line chunks become blank
// lines.
func renderText(chunks []chunk.Chunk) string {
	var sb strings.Builder
	for i := 0; i < len(chunks); i++ {
		c := chunks[i]
		switch c.Kind {
		case chunk.KindEmptyLine:
			sb.WriteByte('\n')
		case chunk.KindTableCell:
			row := tableRow(c)
			sb.WriteString(c.TranslatedText)
			for i+1 < len(chunks) && chunks[i+1].Kind == chunk.KindTableCell && tableRow(chunks[i+1]) == row {
				i++
				sb.WriteByte('\t')
				sb.WriteString(chunks[i].TranslatedText)
			}
			sb.WriteByte('\n')
		default:
			sb.WriteString(c.TranslatedText)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func tableRow(c chunk.Chunk) int {
	if c.Style == nil {
		return 0
	}
	return c.Style.TableRow
}
