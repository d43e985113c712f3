package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/sketchstory/internal/theme"
)

// Parse reads configuration from r. Keys may be written "key = value" or
// "key: value"; unknown sections and keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.Trim(line, "[] "))
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := splitKey(line)
		if !ok {
			continue
		}
		var err error
		switch {
		case current != nil:
			err = theme.Set(current, key, value)
		case section == "":
			err = setRoot(cfg, key, value)
		case section == "canvas":
			err = setCanvas(&cfg.Canvas, key, value)
		case section == "quality":
			err = setQuality(&cfg.Quality, key, value)
		case section == "story":
			err = setStory(&cfg.Story, key, value)
		case section == "notify":
			err = setNotify(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("root section: %w", err)
			}
			return nil, fmt.Errorf("section [%s]: %w", section, err)
		}
	}
	return cfg, scanner.Err()
}

func splitKey(line string) (string, string, bool) {
	sep := strings.IndexAny(line, "=:")
	if sep < 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.TrimSpace(line[:sep]))
	value := strings.TrimSpace(line[sep+1:])
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func setRoot(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	}
	return nil
}

func setCanvas(c *Canvas, key, value string) error {
	var err error
	switch key {
	case "width":
		c.Width, err = positive(key, value)
	case "height":
		c.Height, err = positive(key, value)
	case "grid_step":
		c.GridStep, err = positive(key, value)
	case "grid_guides":
		c.GridGuides, err = boolean(key, value)
	case "background":
		c.Background, err = theme.ParseColor(value)
	}
	return err
}

func setQuality(q *Quality, key, value string) error {
	var err error
	switch key {
	case "min_bytes":
		q.MinBytes, err = positive(key, value)
	case "min_variance":
		q.MinVariance, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return err
}

func setStory(s *Story, key, value string) error {
	switch key {
	case "endpoint":
		s.Endpoint = strings.TrimRight(value, "/")
	case "mood":
		s.Mood = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		s.Timeout = d
	}
	return nil
}

func setNotify(n *Notify, key, value string) error {
	b, err := boolean(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "accept":
		n.Accept = b
	case "reject":
		n.Reject = b
	case "story":
		n.Story = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func boolean(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func positive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}
