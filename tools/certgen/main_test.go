package main

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("expected CERTIFICATE PEM block in %s", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}
	return cert
}

func TestRun_WritesChain(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	if err := run(dir, []string{"localhost", " 127.0.0.1 ", ""}); err != nil {
		t.Fatalf("run error: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	info, err := os.Stat(filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("server.key mode = %v; want 0600", perm)
	}

	ca := readCert(t, filepath.Join(dir, "ca.crt"))
	server := readCert(t, filepath.Join(dir, "server.crt"))
	if err := server.CheckSignatureFrom(ca); err != nil {
		t.Errorf("server certificate not signed by CA: %v", err)
	}
	if len(server.IPAddresses) != 1 || len(server.DNSNames) != 1 {
		t.Errorf("SANs = %v %v", server.DNSNames, server.IPAddresses)
	}
}

func TestRun_ReusesCA(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, []string{"localhost"}); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(filepath.Join(dir, "ca.crt"))

	if err := run(dir, []string{"localhost"}); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if !bytes.Equal(first, second) {
		t.Error("expected the existing CA to be reused")
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), []string{" "}); err == nil {
		t.Error("expected an error when no host is given")
	}
}
