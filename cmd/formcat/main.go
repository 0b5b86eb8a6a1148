// Command formcat dumps the parts of a multipart/form-data body read
// from a file, exercising streamform/multipart end to end the way a
// small operator tool would.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/badu/streamform/header"
	"github.com/badu/streamform/multipart"
	"github.com/badu/streamform/request"
)

var (
	boundaryFlag string

	rootCmd = &cobra.Command{
		Use:   "formcat <file>",
		Short: "Stream-parse a multipart/form-data body and print its parts",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormcat,
	}
)

func init() {
	rootCmd.Flags().StringVar(&boundaryFlag, "boundary", "", "boundary value (required)")
}

func runFormcat(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	h := make(header.Header)
	if boundaryFlag != "" {
		h.Set(header.ContentType, "multipart/form-data; boundary="+boundaryFlag)
	} else {
		return fmt.Errorf("formcat: --boundary is required until Content-Type sniffing from a sidecar header file is added")
	}
	req := request.New("POST", h, f)

	r, err := multipart.NewReader(nil, req, multipart.DefaultOptions())
	if err != nil {
		return err
	}

	for i := 1; ; i++ {
		part, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := part.FormName()
		if name == "" {
			name = fmt.Sprintf("part-%d", i)
		}
		fmt.Fprintf(os.Stdout, "--- %s ---\n", name)
		if fileName := part.FileName(); fileName != "" {
			fmt.Fprintf(os.Stdout, "[file: %s, %s]\n", fileName, part.MediaType())
			if _, err := io.Copy(io.Discard, part); err != nil {
				return err
			}
			continue
		}
		text, err := part.Text()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, text)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
