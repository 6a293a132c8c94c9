package domain

import (
	"database/sql/driver"
	"testing"
	"time"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func validInput() *CreateVideoInput {
	return &CreateVideoInput{
		Title:        "Sunset",
		Description:  "Beach at dusk",
		VideoURL:     "https://media.example.com/videos/sunset.mp4",
		ThumbnailURL: "https://media.example.com/images/sunset.jpg",
	}
}

func TestCreateVideoInputValidateMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateVideoInput)
		field  string
	}{
		{"no title", func(in *CreateVideoInput) { in.Title = "" }, "title"},
		{"blank description", func(in *CreateVideoInput) { in.Description = "   " }, "description"},
		{"no video url", func(in *CreateVideoInput) { in.VideoURL = "" }, "videoUrl"},
		{"no thumbnail url", func(in *CreateVideoInput) { in.ThumbnailURL = "" }, "thumbnailUrl"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(in)

			err := in.Validate()
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(ve.Fields) != 1 || ve.Fields[0] != tc.field {
				t.Errorf("fields = %v, want [%s]", ve.Fields, tc.field)
			}
		})
	}
}

func TestCreateVideoInputValidateNil(t *testing.T) {
	var in *CreateVideoInput
	if err := in.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateVideoInputValidateQualityBounds(t *testing.T) {
	for _, q := range []int{0, 101, -5} {
		in := validInput()
		in.Transformation = &TransformationInput{Quality: intPtr(q)}
		if err := in.Validate(); !IsValidation(err) {
			t.Errorf("quality %d: expected validation error, got %v", q, err)
		}
	}

	in := validInput()
	in.Transformation = &TransformationInput{Quantity: intPtr(250)}
	if err := in.Validate(); !IsValidation(err) {
		t.Errorf("quantity alias: expected validation error, got %v", err)
	}
}

func TestNewVideoDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := NewVideo(validInput(), now)

	if !v.Controls {
		t.Error("controls must default to true")
	}
	if v.Transformation.Quality != DefaultQuality {
		t.Errorf("quality = %d, want %d", v.Transformation.Quality, DefaultQuality)
	}
	if v.Transformation.Height != VideoHeight || v.Transformation.Width != VideoWidth {
		t.Errorf("dimensions = %dx%d", v.Transformation.Width, v.Transformation.Height)
	}
	if !v.CreatedAt.Equal(now) || !v.UpdatedAt.Equal(now) {
		t.Error("timestamps must be set to now")
	}
	if v.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("id must be generated")
	}
}

func TestNewVideoOverridesDimensionsKeepsQuality(t *testing.T) {
	in := validInput()
	in.Controls = boolPtr(false)
	in.Transformation = &TransformationInput{Height: intPtr(480), Width: intPtr(640), Quality: intPtr(70)}

	v := NewVideo(in, time.Now())

	if v.Controls {
		t.Error("explicit controls=false must be kept")
	}
	if v.Transformation.Height != VideoHeight || v.Transformation.Width != VideoWidth {
		t.Errorf("client dimensions must be overridden, got %dx%d", v.Transformation.Width, v.Transformation.Height)
	}
	if v.Transformation.Quality != 70 {
		t.Errorf("quality = %d, want 70", v.Transformation.Quality)
	}
}

func TestNewVideoQuantityAlias(t *testing.T) {
	in := validInput()
	in.Transformation = &TransformationInput{Quantity: intPtr(40)}
	if got := NewVideo(in, time.Now()).Transformation.Quality; got != 40 {
		t.Errorf("quality = %d, want 40", got)
	}
}

func TestTransformationValueScan(t *testing.T) {
	src := Transformation{Height: VideoHeight, Width: VideoWidth, Quality: 55}
	val, err := src.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var dst Transformation
	if err := dst.Scan(val.(string)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if dst != src {
		t.Errorf("got %+v, want %+v", dst, src)
	}

	if err := dst.Scan(nil); err != nil || dst != (Transformation{}) {
		t.Errorf("Scan(nil) = %+v, %v", dst, err)
	}
	if err := dst.Scan(42); err == nil {
		t.Error("expected error for unsupported type")
	}

	var _ driver.Valuer = src
}

func TestNewVideoTruncatesToDatabasePrecision(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
	v := NewVideo(validInput(), now)

	want := time.Date(2026, 1, 2, 3, 4, 5, 123456000, time.UTC)
	if !v.CreatedAt.Equal(want) || !v.UpdatedAt.Equal(want) {
		t.Errorf("timestamps = %v / %v, want %v", v.CreatedAt, v.UpdatedAt, want)
	}
}
