// Package main generates a development Certificate Authority (CA) and a
// server certificate signed by it, writing them under the "certs"
// directory. An existing CA is reused so clients keep trusting it.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/atinyakov/IssueKeeper/internal/certgen"
)

func main() {
	fs := pflag.NewFlagSet("certgen", pflag.ExitOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	_ = fs.Parse(os.Args[1:])

	if err := run(*dir, strings.Split(*hosts, ",")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

// run writes ca.crt, ca.key, server.crt and server.key into dir.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	caCertPath := filepath.Join(dir, "ca.crt")
	caKeyPath := filepath.Join(dir, "ca.key")

	if _, err := os.Stat(caCertPath); errors.Is(err, os.ErrNotExist) {
		certPEM, keyPEM, err := certgen.GenerateCA("IssueKeeper Dev CA")
		if err != nil {
			return err
		}
		if err := writePair(caCertPath, caKeyPath, certPEM, keyPEM); err != nil {
			return err
		}
	}

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if err != nil {
		return err
	}

	var clean []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, h)
		}
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(clean, caCert, caKey)
	if err != nil {
		return err
	}
	return writePair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM)
}

// writePair writes a PEM certificate and its key; the key is owner-only.
func writePair(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
