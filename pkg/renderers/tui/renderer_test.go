package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-daterange/pkg/binding"
	"github.com/goliatone/go-daterange/pkg/daterange"
	"github.com/goliatone/go-daterange/pkg/render"
	"github.com/goliatone/go-daterange/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	prompts      []InputConfig
	infoMessages []string
	inputErr     error
	inputPos     int
	confirmPos   int
	// validate makes Input behave like survey: answers failing the
	// configured Validator are recorded and the next scripted answer is used.
	validate bool
	rejected []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg)
	for {
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if s.validate && cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.rejected = append(s.rejected, err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newTestRenderer(t *testing.T, driver PromptDriver, options ...Option) *Renderer {
	t.Helper()

	r, err := New(append([]Option{WithPromptDriver(driver), WithoutColor()}, options...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRender_CollectsRange(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", " 2024-05-10 "}}
	field := testsupport.NewField(t, daterange.Props{}, "", "")

	out, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "values.golden.json")
	if testsupport.WriteMaybeGolden(t, goldenPath, out) {
		return
	}
	want := testsupport.MustReadGoldenString(t, goldenPath)
	if diff := testsupport.CompareGolden(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if mirror, ok := field.StartMirror(); !ok || mirror != "2024-05-01" {
		t.Fatalf("expected mirror to follow start prompt, got %q, %v", mirror, ok)
	}
	if len(driver.prompts) != 2 {
		t.Fatalf("expected two prompts, got %d", len(driver.prompts))
	}
	if driver.prompts[0].Message != daterange.StartLabel || driver.prompts[1].Message != daterange.EndLabel {
		t.Fatalf("unexpected prompt labels: %+v", driver.prompts)
	}
	if driver.prompts[1].Help != "YYYY-MM-DD, between 2024-05-01 and 2024-05-15" {
		t.Fatalf("expected end help to carry bounds, got %q", driver.prompts[1].Help)
	}
}

func TestRender_RepromptsOnRuleFailures(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "05/01/2024", "2024-05-01", "", "2024-13-40"}}
	field := testsupport.NewField(t, daterange.Props{}, "", "")

	out, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantInfo := []string{
		"x " + daterange.StartRequiredMessage,
		"x " + daterange.InvalidDateMessage,
		"x " + daterange.EndRequiredMessage,
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if string(out) != `{"startDate":"2024-05-01","endDate":"2024-13-40"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRender_PromptValidatorEnforcesRules(t *testing.T) {
	driver := &stubDriver{
		inputs:   []string{"", "05/01/2024", " 2024-05-01 ", "", "2024-13-40"},
		validate: true,
	}
	field := testsupport.NewField(t, daterange.Props{}, "", "")

	out, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(driver.prompts) != 2 {
		t.Fatalf("expected one prompt per input, got %d", len(driver.prompts))
	}
	for _, prompt := range driver.prompts {
		if prompt.Validator == nil {
			t.Fatalf("expected validator on prompt %q", prompt.Message)
		}
	}
	wantRejected := []string{
		daterange.StartRequiredMessage,
		daterange.InvalidDateMessage,
		daterange.EndRequiredMessage,
	}
	if diff := cmp.Diff(wantRejected, driver.rejected); diff != "" {
		t.Fatalf("rejected answers mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("validator failures should not be re-reported, got %v", driver.infoMessages)
	}
	if string(out) != `{"startDate":"2024-05-01","endDate":"2024-13-40"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRender_ShowsExternalErrorsFirst(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-02"}}
	field := testsupport.NewField(t, daterange.Props{
		ErrorsStart:   "Start Date is in the future",
		ErrorMessages: []string{"A", "B"},
	}, "", "")

	if _, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{"x A", "x B", "x Start Date is in the future"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SubmitsThroughEngine(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-03"}}
	store := testsupport.NewStore("", "")

	var submitted binding.Values
	field := testsupport.NewField(t, daterange.Props{
		Control: store,
		OnSubmit: store.HandleSubmit(func(values binding.Values) error {
			submitted = values
			return nil
		}),
	}, "", "")

	if _, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := binding.Values{daterange.StartDateField: "2024-05-01", daterange.EndDateField: "2024-05-03"}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if store.SubmitCount() != 1 {
		t.Fatalf("expected one submit, got %d", store.SubmitCount())
	}
}

func TestRender_SubmitErrorPropagates(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-03"}}
	searchErr := errors.New("search failed")
	field := testsupport.NewField(t, daterange.Props{
		OnSubmit: func() error { return searchErr },
	}, "", "")

	_, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if !errors.Is(err, searchErr) {
		t.Fatalf("expected submit error, got %v", err)
	}
}

func TestRender_FetchingRefusesSubmit(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-03"}}
	field := testsupport.NewField(t, daterange.Props{
		IsFetching: true,
		OnSubmit:   func() error { t.Fatalf("submit must not run while fetching"); return nil },
	}, "", "")

	_, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if !errors.Is(err, daterange.ErrSubmitDisabled) {
		t.Fatalf("expected ErrSubmitDisabled, got %v", err)
	}
	if diff := cmp.Diff([]string{"i " + daterange.LoadingLabel}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ConfirmDeclined(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"2024-05-01", "2024-05-03"},
		confirm: []bool{false},
	}
	field := testsupport.NewField(t, daterange.Props{}, "", "")

	_, err := newTestRenderer(t, driver, WithConfirm(true)).Render(context.Background(), field, render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRender_DriverAbort(t *testing.T) {
	driver := &stubDriver{inputErr: ErrAborted}
	field := testsupport.NewField(t, daterange.Props{}, "", "")

	_, err := newTestRenderer(t, driver).Render(context.Background(), field, render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if field.HasStartDate() {
		t.Fatalf("aborted session must not commit a start date")
	}
}

func TestRender_OutputFormats(t *testing.T) {
	cases := []struct {
		format      OutputFormat
		contentType string
		check       func(t *testing.T, out []byte)
	}{
		{
			format:      OutputFormatFormURLEncoded,
			contentType: "application/x-www-form-urlencoded",
			check: func(t *testing.T, out []byte) {
				if string(out) != "endDate=2024-05-10&startDate=2024-05-01" {
					t.Fatalf("unexpected form output %q", out)
				}
			},
		},
		{
			format:      OutputFormatPrettyText,
			contentType: "text/plain",
			check: func(t *testing.T, out []byte) {
				if string(out) != "Start Date: 2024-05-01\nEnd Date: 2024-05-10\n" {
					t.Fatalf("unexpected pretty output %q", out)
				}
			},
		},
		{
			format:      OutputFormatYAML,
			contentType: "application/yaml",
			check: func(t *testing.T, out []byte) {
				var got daterange.FormValues
				if err := yaml.Unmarshal(out, &got); err != nil {
					t.Fatalf("decode yaml: %v", err)
				}
				want := daterange.FormValues{StartDate: "2024-05-01", EndDate: "2024-05-10"}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-10"}}
			r := newTestRenderer(t, driver, WithOutputFormat(tc.format))
			if r.ContentType() != tc.contentType {
				t.Fatalf("content type: want %q, got %q", tc.contentType, r.ContentType())
			}
			out, err := r.Render(context.Background(), testsupport.NewField(t, daterange.Props{}, "", ""), render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			tc.check(t, out)
		})
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-05-01", "2024-05-10"}}
	r := newTestRenderer(t, driver, WithSubmitTransformer(func(v daterange.FormValues) (daterange.FormValues, error) {
		v.EndDate = v.StartDate
		return v, nil
	}))

	out, err := r.Render(context.Background(), testsupport.NewField(t, daterange.Props{}, "", ""), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"startDate":"2024-05-01","endDate":"2024-05-01"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, raw := range []string{"json", "form", "pretty", "yaml"} {
		if got, ok := ParseOutputFormat(raw); !ok || string(got) != raw {
			t.Fatalf("expected %q to parse, got %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseOutputFormat("xml"); ok {
		t.Fatalf("expected unknown format to be rejected")
	}
}
