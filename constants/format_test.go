package constants

import "testing"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		fileName string
		want     FileFormat
	}{
		{"pdf mime", "application/pdf", "contract.bin", PDF},
		{"docx mime", MIMEDocx, "contract.bin", DOCX},
		{"text mime", "text/plain", "contract.bin", TEXT},
		{"text mime with charset", "text/plain; charset=utf-8", "contract.bin", TEXT},
		{"image mime", "image/png", "contract.bin", IMAGE},
		{"mime wins over extension", "application/pdf", "contract.docx", PDF},
		{"extension fallback pdf", "", "contract.pdf", PDF},
		{"extension fallback docx", "application/octet-stream", "Contract.DOCX", DOCX},
		{"extension fallback txt", "", "notes.txt", TEXT},
		{"extension fallback jpeg", "", "scan.JPEG", IMAGE},
		{"unknown everything", "application/octet-stream", "contract.xyz", UNKNOWN},
		{"no extension", "", "contract", UNKNOWN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.mimeType, tt.fileName); got != tt.want {
				t.Errorf("DetectFormat(%q, %q) = %v, want %v", tt.mimeType, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestMapExtToFormat(t *testing.T) {
	if got := MapExtToFormat(".tiff"); got != IMAGE {
		t.Errorf("MapExtToFormat(.tiff) = %v, want IMAGE", got)
	}
	if got := MapExtToFormat("pdf"); got != PDF {
		t.Errorf("MapExtToFormat(pdf) = %v, want PDF", got)
	}
	if got := MapExtToFormat(""); got != UNKNOWN {
		t.Errorf("MapExtToFormat(empty) = %v, want UNKNOWN", got)
	}
}

func TestIsImageExt(t *testing.T) {
	if !IsImageExt(".WebP") {
		t.Error("expected .WebP to be an image extension")
	}
	if IsImageExt(".pdf") {
		t.Error("did not expect .pdf to be an image extension")
	}
}
