package inventory

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"netinv/internal/model"
)

// ObjectUpload describes a file attached to a site.
type ObjectUpload struct {
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

func (s *Service) requireObjects() error {
	if s.objects == nil {
		return fmt.Errorf("%w: no object store configured", ErrService)
	}
	return nil
}

func (s *Service) siteObjectKey(siteID, folder, name string) string {
	base := strings.ReplaceAll(path.Base("/"+name), " ", "_")
	if base == "/" || base == "." {
		base = "upload"
	}
	return path.Join("sites", siteID, folder, s.idgen.New()+"-"+base)
}

// UploadFloorplan stores the floor plan of a site and points floorplanUrl at
// it. A previous floor plan is removed.
func (s *Service) UploadFloorplan(ctx context.Context, siteID string, up ObjectUpload, userID string) (model.Site, error) {
	if err := s.checkSiteObjects(ctx, siteID, userID); err != nil {
		return model.Site{}, err
	}

	key := s.siteObjectKey(siteID, "floorplan", up.Name)
	if err := s.objects.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return model.Site{}, fmt.Errorf("uploading floor plan: %w", err)
	}
	var previous string
	updated, err := s.editSite(ctx, siteID, func(site model.Site) (model.Patch, error) {
		previous = site.FloorplanURL
		return model.Patch{"floorplanUrl": s.objects.URL(key)}, nil
	})
	if err != nil {
		s.removeObject(ctx, siteID, key)
		return model.Site{}, fmt.Errorf("recording floor plan: %w", err)
	}
	if old, ok := s.objects.Key(previous); ok && previous != "" {
		s.removeObject(ctx, siteID, old)
	}

	s.invalidate(OpSiteObjects, Event{Kind: model.KindSite, SiteID: siteID})
	s.logger.Info("floor plan uploaded", "site", siteID, "key", key, "size", up.Size, "user", userID)
	return updated, nil
}

// AddRackPhoto stores a rack photo and appends its URL to rackPhotosUrls.
func (s *Service) AddRackPhoto(ctx context.Context, siteID string, up ObjectUpload, userID string) (model.Site, error) {
	if err := s.checkSiteObjects(ctx, siteID, userID); err != nil {
		return model.Site{}, err
	}

	key := s.siteObjectKey(siteID, "rack-photos", up.Name)
	if err := s.objects.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return model.Site{}, fmt.Errorf("uploading rack photo: %w", err)
	}
	updated, err := s.editSite(ctx, siteID, func(site model.Site) (model.Patch, error) {
		urls := append(slices.Clone(site.RackPhotosURLs), s.objects.URL(key))
		return model.Patch{"rackPhotosUrls": urls}, nil
	})
	if err != nil {
		s.removeObject(ctx, siteID, key)
		return model.Site{}, fmt.Errorf("recording rack photo: %w", err)
	}

	s.invalidate(OpSiteObjects, Event{Kind: model.KindSite, SiteID: siteID})
	s.logger.Info("rack photo added", "site", siteID, "key", key, "user", userID)
	return updated, nil
}

// RemoveRackPhoto drops url from rackPhotosUrls and deletes the object.
func (s *Service) RemoveRackPhoto(ctx context.Context, siteID, url, userID string) (model.Site, error) {
	if err := requireUser(userID); err != nil {
		return model.Site{}, err
	}
	if err := s.requireObjects(); err != nil {
		return model.Site{}, err
	}
	updated, err := s.editSite(ctx, siteID, func(site model.Site) (model.Patch, error) {
		i := slices.Index(site.RackPhotosURLs, url)
		if i < 0 {
			return nil, fmt.Errorf("rack photo %s of site %s: %w", url, siteID, ErrNotFound)
		}
		return model.Patch{"rackPhotosUrls": slices.Delete(slices.Clone(site.RackPhotosURLs), i, i+1)}, nil
	})
	if err != nil {
		return model.Site{}, fmt.Errorf("removing rack photo: %w", err)
	}
	if key, ok := s.objects.Key(url); ok {
		s.removeObject(ctx, siteID, key)
	}

	s.invalidate(OpSiteObjects, Event{Kind: model.KindSite, SiteID: siteID})
	s.logger.Info("rack photo removed", "site", siteID, "url", url, "user", userID)
	return updated, nil
}

// checkSiteObjects runs before an upload so nothing is stored for a missing
// site.
func (s *Service) checkSiteObjects(ctx context.Context, siteID, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.requireObjects(); err != nil {
		return err
	}
	_, err := s.GetSite(ctx, siteID)
	return err
}

// editSite reads the site and writes the patch built from it in one
// transaction, so concurrent edits of the object lists do not drop entries.
func (s *Service) editSite(ctx context.Context, siteID string, build func(model.Site) (model.Patch, error)) (model.Site, error) {
	var updated model.Site
	err := s.store.WithinTx(ctx, func(tx Store) error {
		site, err := tx.Sites().FetchByID(ctx, siteID)
		if err != nil {
			return err
		}
		patch, err := build(site)
		if err != nil {
			return err
		}
		updated, err = tx.Sites().Update(ctx, siteID, patch, s.clock.Now().UTC())
		return err
	})
	return updated, err
}

func (s *Service) removeObject(ctx context.Context, siteID, key string) {
	if err := s.objects.Delete(ctx, key); err != nil {
		s.logger.Warn("deleting site object", "site", siteID, "key", key, "error", err)
	}
}
