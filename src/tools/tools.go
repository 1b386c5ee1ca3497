package tools

import (
	"fmt"
	stdpng "image/png"
	"os"
	"path/filepath"
	"strings"

	"git.handmade.network/hmn/pngview/src/logging"
	"git.handmade.network/hmn/pngview/src/png"
	"git.handmade.network/hmn/pngview/src/viewer"
	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
)

func init() {
	chunksCommand := &cobra.Command{
		Use:   "chunks [file.png]",
		Short: "List the chunk sequence of a PNG file",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a PNG file.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			f, err := os.Open(args[0])
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to open file")
			}
			defer f.Close()

			err = png.WalkChunks(f, func(c png.ChunkInfo) error {
				kind := "ancillary"
				if c.Critical {
					kind = "critical"
				}
				fmt.Printf("%8d  %s  %-9s  %8d bytes  crc %08x\n", c.Offset, c.Name, kind, c.Length, c.CRC)
				return nil
			})
			if err != nil {
				logging.Fatal().Err(err).Msg("Chunk walk failed")
			}
		},
	}
	viewer.ViewerCommand.AddCommand(chunksCommand)

	infoCommand := &cobra.Command{
		Use:   "info [file.png]",
		Short: "Print the image header of a PNG file",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a PNG file.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			f, err := os.Open(args[0])
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to open file")
			}
			defer f.Close()

			found := false
			err = png.WalkChunks(f, func(c png.ChunkInfo) error {
				if c.Name != "IHDR" {
					return nil
				}
				found = true
				header, err := png.ParseHeader(c.Data)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %dx%d, %s, %d bits per channel", args[0], header.Width, header.Height, header.ColorType, header.BitDepth)
				if header.Interlace != 0 {
					fmt.Printf(", Adam7 interlaced")
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to read header")
			}
			if !found {
				logging.Fatal().Msg("No IHDR chunk in file")
			}
		},
	}
	viewer.ViewerCommand.AddCommand(infoCommand)

	decodeCommand := &cobra.Command{
		Use:   "decode [file.png] [out.bmp|out.png]",
		Short: "Decode a PNG file and write the raster to a BMP or PNG file",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide an input and an output file.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			img, err := png.DecodeFile(args[0])
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to decode")
			}

			out, err := os.Create(args[1])
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to create output file")
			}
			defer out.Close()

			switch strings.ToLower(filepath.Ext(args[1])) {
			case ".bmp":
				err = bmp.Encode(out, img)
			case ".png":
				err = stdpng.Encode(out, img)
			default:
				logging.Fatal().Str("file", args[1]).Msg("Output must be a .bmp or .png file")
			}
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to encode output")
			}

			logging.Info().
				Str("file", args[1]).
				Str("size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy())).
				Msg("Wrote decoded raster")
		},
	}
	viewer.ViewerCommand.AddCommand(decodeCommand)
}
