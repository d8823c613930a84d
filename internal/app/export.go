package app

import (
	"fmt"
	"os"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/config"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/export"
	"github.com/leth4/leto-sub000/internal/storage"
)

// readBoard decodes the document at path without opening an engine.
func readBoard(files *storage.FileStore, path string, fontSize float64) (domain.BoardState, error) {
	text, err := files.ReadText(path)
	if err != nil {
		return domain.BoardState{}, err
	}
	st, err := board.Decode(text, fontSize)
	if err != nil {
		return domain.BoardState{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// ExportPNG renders the board at boardPath into the PNG file out.
func ExportPNG(cfg config.Config, boardPath, out string) error {
	files := storage.NewFileStore(cfg.Root)
	st, err := readBoard(files, boardPath, cfg.Board.FontSize)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	err = export.PNG(st, export.Options{
		Padding:  cfg.Export.Padding,
		Scale:    cfg.Export.Scale,
		FontSize: st.FontSize,
		Images:   export.FileImages(files.LocalPath),
	}, f)
	if err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("export %s: %w", boardPath, err)
	}
	return f.Close()
}
