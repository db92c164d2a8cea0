package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

// TagService manages tag records and model-assisted tag suggestion.
type TagService struct {
	tagRepo   ports.TagRepository
	quoteRepo ports.QuoteRepository
	suggester ports.TagSuggester
	logger    *zap.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo ports.TagRepository,
	quoteRepo ports.QuoteRepository,
	suggester ports.TagSuggester,
	logger *zap.Logger,
) *TagService {
	return &TagService{
		tagRepo:   tagRepo,
		quoteRepo: quoteRepo,
		suggester: suggester,
		logger:    logger,
	}
}

// ListTags returns all tags sorted by usage, most used first.
func (s *TagService) ListTags(ctx context.Context) ([]*quotes.Tag, error) {
	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].QuoteCount != tags[j].QuoteCount {
			return tags[i].QuoteCount > tags[j].QuoteCount
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// TagNames returns just the tag names, for dropdowns and the suggester.
func (s *TagService) TagNames(ctx context.Context) ([]string, error) {
	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateTag adds an empty tag record ahead of any quote using it.
func (s *TagService) CreateTag(ctx context.Context, name, createdBy string) (*quotes.Tag, error) {
	if existing, err := s.tagRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, errors.NewConflictError("tag already exists")
	}

	tag, err := quotes.NewTag(name, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("Tag created", zap.String("tag", tag.Name))
	return tag, nil
}

// DeleteTag removes a tag record. Tags still attached to quotes are
// rejected unless force is set, in which case mappings are detached first.
func (s *TagService) DeleteTag(ctx context.Context, name string, force bool) error {
	tag, err := s.tagRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if tag.QuoteCount > 0 && !force {
		return errors.NewConflictError("tag is still attached to quotes").
			WithCode("TAG_IN_USE").
			WithDetails(map[string]interface{}{"quote_count": tag.QuoteCount})
	}

	if tag.QuoteCount > 0 {
		if err := s.detachTag(ctx, name); err != nil {
			return err
		}
	}

	if err := s.tagRepo.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Info("Tag deleted", zap.String("tag", name), zap.Bool("forced", force))
	return nil
}

// DeleteUnusedTags removes every tag record with no quotes attached and
// returns the names that were deleted.
func (s *TagService) DeleteUnusedTags(ctx context.Context) ([]string, error) {
	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0)
	for _, tag := range tags {
		if tag.QuoteCount > 0 {
			continue
		}
		if err := s.tagRepo.Delete(ctx, tag.Name); err != nil {
			s.logger.Warn("Failed to delete unused tag",
				zap.String("tag", tag.Name),
				zap.Error(err),
			)
			continue
		}
		deleted = append(deleted, tag.Name)
	}

	s.logger.Info("Unused tags deleted", zap.Int("count", len(deleted)))
	return deleted, nil
}

// RenameTag moves a tag and rewrites every quote carrying it.
func (s *TagService) RenameTag(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.NewValidationError("new tag name is required")
	}
	if len(newName) > quotes.MaxTagLength {
		return errors.NewValidationError("tag names must be at most 50 characters")
	}
	if newName == oldName {
		return nil
	}

	if _, err := s.tagRepo.GetByName(ctx, oldName); err != nil {
		return err
	}
	if existing, err := s.tagRepo.GetByName(ctx, newName); err == nil && existing != nil {
		return errors.NewConflictError("a tag with the new name already exists")
	}

	if err := s.tagRepo.Rename(ctx, oldName, newName); err != nil {
		return err
	}

	s.logger.Info("Tag renamed",
		zap.String("from", oldName),
		zap.String("to", newName),
	)
	return nil
}

// SuggestTags asks the language model for tags, preferring the existing set.
func (s *TagService) SuggestTags(ctx context.Context, text, author string) ([]string, error) {
	if s.suggester == nil {
		return nil, errors.NewUnavailableError("tag suggestions")
	}

	existing, err := s.TagNames(ctx)
	if err != nil {
		return nil, err
	}

	suggested, err := s.suggester.SuggestTags(ctx, text, author, existing)
	if err != nil {
		return nil, err
	}

	clean, err := quotes.CleanTags(suggested)
	if err != nil {
		// Model output is untrusted; drop invalid entries instead of failing.
		clean = nil
		for _, t := range suggested {
			t = strings.TrimSpace(t)
			if t != "" && len(t) <= quotes.MaxTagLength {
				clean = append(clean, t)
			}
		}
	}
	return clean, nil
}

// detachTag removes a tag from every quote carrying it.
func (s *TagService) detachTag(ctx context.Context, name string) error {
	qs, _, err := s.quoteRepo.ListByTag(ctx, name, 0, nil)
	if err != nil {
		return err
	}
	for _, q := range qs {
		oldTags := append([]string(nil), q.Tags...)
		kept := make([]string, 0, len(q.Tags))
		for _, t := range q.Tags {
			if t != name {
				kept = append(kept, t)
			}
		}
		q.Tags = kept
		if err := s.quoteRepo.Update(ctx, q, oldTags); err != nil {
			return err
		}
	}
	return nil
}
