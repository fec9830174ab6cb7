package cmd

import (
	"fmt"
	"net/url"
	"path"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/images"
)

func newDownloadCmd(a *app) *cobra.Command {
	var outputDir string
	var filename string

	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Download an image to a local directory",
		Example: `  imagesearch download https://example.com/lake.jpg --output ./images
  imagesearch download https://example.com/lake.jpg --output ./images --filename cover.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.provider()
			if err != nil {
				return err
			}

			if filename == "" {
				filename, err = filenameFromURL(args[0])
				if err != nil {
					return err
				}
			}

			savedPath, err := provider.Download(cmd.Context(), args[0], outputDir, filename)
			if err != nil {
				return fmt.Errorf("failed to download image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Image successfully downloaded to: %s\n", savedPath)
			if info, err := images.Inspect(savedPath); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Detected %s\n", info)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory to save the image in")
	cmd.Flags().StringVar(&filename, "filename", "", "File name to save as (defaults to the last URL path segment)")

	return cmd
}

// filenameFromURL returns the last path segment of rawURL. URLs with no
// usable segment, such as a bare host, need an explicit --filename.
func filenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", apperr.New(apperr.KindValidation, "download image", fmt.Errorf("invalid image url: %w", err))
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", apperr.Newf(apperr.KindValidation, "download image",
			"cannot derive a file name from %s; pass --filename", rawURL)
	}
	return name, nil
}
