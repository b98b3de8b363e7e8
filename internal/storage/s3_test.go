package storage

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		wantErr bool
	}{
		{uri: "s3://docs", want: Location{Bucket: "docs"}},
		{uri: "s3://docs/", want: Location{Bucket: "docs"}},
		{uri: "s3://docs/in", want: Location{Bucket: "docs", Prefix: "in/"}},
		{uri: "s3://docs//in/2024/", want: Location{Bucket: "docs", Prefix: "in/2024/"}},
		{uri: "s3:///in", wantErr: true},
		{uri: "/app/input", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) err = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseURI(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestLocationKey(t *testing.T) {
	loc := Location{Bucket: "docs", Prefix: "out/"}
	if got := loc.Key("file01.json"); got != "out/file01.json" {
		t.Errorf("Key = %q", got)
	}
	if got := loc.String(); got != "s3://docs/out/" {
		t.Errorf("String = %q", got)
	}
	if !IsURI("s3://x") || IsURI("/tmp/x") {
		t.Errorf("IsURI misclassified")
	}
}
