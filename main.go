package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"parrot/audio"
	"parrot/history"
	"parrot/log"
	"parrot/session"
	"parrot/transcriber"
	"parrot/vision"
)

var version = "dev"

func dataDir() (string, error) {
	if p := os.Getenv("PARROT_DATA_PATH"); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "parrot"), nil
}

func openStore() (*history.Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	return history.NewStore(history.NewFileKV(dir)), nil
}

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	clearFlag := fs.Bool("clear", false, "Delete all stored sessions")
	deleteFlag := fs.String("delete", "", "Delete the session with the given id")
	fs.Parse(args)

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *clearFlag:
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("History cleared.")

	case *deleteFlag != "":
		if err := store.DeleteByID(*deleteFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Deleted.")

	default:
		recs, err := store.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions recorded yet.")
			return
		}
		avg, _ := store.AverageScore()
		fmt.Printf("%d sessions, average score %d\n\n", len(recs), avg)
		for _, r := range recs {
			fmt.Printf("%s  %3d  %s\n      id=%s\n", r.Date.Local().Format("2006-01-02 15:04"), r.Score, r.Text, r.ID)
		}
	}
}

func runDevices() {
	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing devices: %v\n", err)
		os.Exit(1)
	}
	for _, d := range devices {
		fmt.Println(d.Name)
	}
}

// resolveSentence picks the practice text from the flags: -sentence
// wins, then the clipboard, then OCR over -image.
func resolveSentence(sentence string, paste bool, imagePath string) (string, error) {
	if sentence != "" {
		return sentence, nil
	}
	if paste {
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("reading clipboard: %w", err)
		}
		return text, nil
	}
	if imagePath != "" {
		key := os.Getenv("VISION_API_KEY")
		if key == "" {
			return "", fmt.Errorf("set VISION_API_KEY to extract text from images")
		}
		img, err := os.ReadFile(imagePath)
		if err != nil {
			return "", err
		}
		return vision.New(key).ExtractText(context.Background(), img)
	}
	return "", fmt.Errorf("no practice text: pass -sentence, -paste, or -image")
}

func run() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "history":
			runHistory(os.Args[2:])
			return
		case "devices":
			runDevices()
			return
		}
	}

	sentenceFlag := flag.String("sentence", "", "Sentence to practice")
	pasteFlag := flag.Bool("paste", false, "Take the practice sentence from the clipboard")
	imageFlag := flag.String("image", "", "Extract the practice sentence from an image file")
	formatFlag := flag.String("format", "wav", "Audio format: wav or flac")
	deviceFlag := flag.String("device", "", "Use named microphone device (substring match)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("parrot %s\n", version)
		os.Exit(0)
	}

	switch *formatFlag {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", *formatFlag)
		os.Exit(1)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: parrot needs an interactive terminal")
		os.Exit(1)
	}

	sentence, err := resolveSentence(*sentenceFlag, *pasteFlag, *imageFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	text := session.NewText(sentence)
	if len(text.Words) == 0 {
		fmt.Fprintln(os.Stderr, "Error: practice text is empty")
		os.Exit(1)
	}

	tr, err := transcriber.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	device, err := audio.FindDevice(ctx, *deviceFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	recorder := audio.NewRecorder(ctx, device, *formatFlag)

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sink := &teaSink{}
	engine := session.New(session.Config{
		Recorder:    recorder,
		Transcriber: tr,
		Store:       store,
		Sink:        sink,
	})

	p := NewTUIProgram(engine, store, text)
	sink.setProgram(p)

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Quit can land mid-recording; discard it and let any pending
	// history write finish before teardown.
	engine.Abort()
	engine.Flush()
}

func main() {
	run()
}
