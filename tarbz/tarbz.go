// Package tarbz writes and reads the single-file backup bundle format: a tar
// stream of a directory tree, bzip2-compressed, with a .tbz extension.
package tarbz

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
	"github.com/rs/zerolog"
)

// Extension is appended to every archive produced by Compress.
const Extension = ".tbz"

// Compress archives the directory tree at srcDir into destPath + ".tbz" and
// returns the produced path. The destination must not already exist. Entries
// are stored with paths relative to srcDir.
func Compress(ctx context.Context, srcDir string, destPath string, logger zerolog.Logger) (string, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("could not open source directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source path %s is not a directory", srcDir)
	}

	outPath := destPath + Extension
	outFile, err := os.OpenFile(outPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("could not create archive: %w", err)
	}

	logger.Info().Str("source", srcDir).Str("path", outPath).Msg("creating archive")

	err = writeArchive(ctx, srcDir, outFile)
	closeErr := outFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("could not write archive %s: %w", outPath, err)
	}

	written, err := os.Stat(outPath)
	if err != nil {
		return "", fmt.Errorf("could not stat archive %s: %w", outPath, err)
	}
	logger.Info().Str("path", outPath).Int64("size", written.Size()).Msg("archive written")

	return outPath, nil
}

func writeArchive(ctx context.Context, srcDir string, w io.Writer) error {
	bzWriter, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		return err
	}
	tarWriter := tar.NewWriter(bzWriter)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			// Sockets, devices and symlinks have no place in a dump directory.
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tarWriter, file)
		closeErr := file.Close()
		if err != nil {
			return err
		}
		return closeErr
	})
	if err != nil {
		return err
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return bzWriter.Close()
}

// Extract decompresses the archive at srcPath into destDir, which must not
// already exist and is created. Entries that would escape destDir are
// rejected.
func Extract(ctx context.Context, srcPath string, destDir string, logger zerolog.Logger) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("could not open archive: %w", err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if _, err := os.Stat(destDir); err == nil {
		return fmt.Errorf("output directory %s already exists", destDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not stat output directory: %w", err)
	}
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	logger.Info().Str("path", srcPath).Str("dest", destDir).Msg("extracting archive")

	bzReader, err := bzip2.NewReader(srcFile, nil)
	if err != nil {
		return fmt.Errorf("could not read archive %s: %w", srcPath, err)
	}
	tarReader := tar.NewReader(bzReader)

	extracted := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("could not read archive %s: %w", srcPath, err)
		}

		name := filepath.FromSlash(header.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes output directory", header.Name)
		}
		target := filepath.Join(destDir, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("could not create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
				return fmt.Errorf("could not create directory for %s: %w", target, err)
			}
			if err := extractFile(tarReader, target, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("could not extract %s: %w", target, err)
			}
			extracted++
		default:
			logger.Warn().Str("entry", header.Name).Msg("skipping unsupported archive entry type")
		}
	}

	logger.Info().Str("dest", destDir).Int("files_count", extracted).Msg("archive extracted")

	return nil
}

func extractFile(r io.Reader, target string, mode fs.FileMode) error {
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	_, err = io.Copy(file, r)
	closeErr := file.Close()
	if err != nil {
		return err
	}
	return closeErr
}
