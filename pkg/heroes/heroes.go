// Package heroes saves the hero list served by the Steam Web API.
package heroes

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/steam"
	"matchharvest/pkg/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source serves the hero list
type Source interface {
	Heroes(ctx context.Context, language string) (*steam.HeroList, error)
}

// File is the saved hero data
type File struct {
	Heroes []steam.Hero `json:"heroes"`
	Count  int          `json:"count"`
}

// Fetch downloads the hero list localized to language and writes it under
// key, replacing any previous file
func Fetch(ctx context.Context, source Source, backend storage.Backend, key, language string, log logger.Logger) (*File, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	list, err := source.Heroes(ctx, language)
	if err != nil {
		return nil, errs.WithStage(err, errs.StageHeroes)
	}

	file := &File{Heroes: list.Heroes, Count: list.Count}
	if file.Heroes == nil {
		file.Heroes = []steam.Hero{}
	}
	data, err := json.Marshal(file)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, errs.StageHeroes, err, "failed to encode hero data")
	}
	if err := backend.Write(ctx, key, data); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, errs.StageHeroes, err, fmt.Sprintf("failed to write %s", key))
	}

	log.InfoWithFields("hero data saved", map[string]interface{}{
		"file":  key,
		"count": file.Count,
	})
	return file, nil
}

// Load reads a saved hero file
func Load(ctx context.Context, backend storage.Backend, key string) (*File, error) {
	data, err := backend.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &file, nil
}
