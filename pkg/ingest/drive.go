package ingest

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const driveEndpoint = "https://www.googleapis.com/drive/v3/files"

// DriveIngestor maps recently modified files into artifacts and
// document-edit moments.
type DriveIngestor struct {
	api    *googleAPI
	logger *zap.Logger
}

// NewDriveIngestor creates the drive worker.
func NewDriveIngestor(api *googleAPI, logger *zap.Logger) *DriveIngestor {
	return &DriveIngestor{api: api, logger: logger.Named("drive")}
}

var _ Ingestor = (*DriveIngestor)(nil)

// Source implements Ingestor.
func (d *DriveIngestor) Source() models.Source {
	return models.SourceDrive
}

func mimeToArtifactType(mimeType string) models.ArtifactType {
	switch {
	case strings.Contains(mimeType, "document") || strings.Contains(mimeType, "text"):
		return models.ArtifactDocument
	case strings.Contains(mimeType, "spreadsheet") || strings.Contains(mimeType, "csv"):
		return models.ArtifactSpreadsheet
	case strings.Contains(mimeType, "presentation") || strings.Contains(mimeType, "slide"):
		return models.ArtifactPresentation
	case strings.Contains(mimeType, "video"):
		return models.ArtifactVideo
	case strings.Contains(mimeType, "image"):
		return models.ArtifactImage
	default:
		return models.ArtifactOther
	}
}

type driveListResponse struct {
	Files []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		MimeType     string `json:"mimeType"`
		CreatedTime  string `json:"createdTime"`
		ModifiedTime string `json:"modifiedTime"`
		WebViewLink  string `json:"webViewLink"`
	} `json:"files"`
}

// Ingest implements Ingestor.
func (d *DriveIngestor) Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(d.api.maxResults))
	params.Set("orderBy", "modifiedTime desc")
	params.Set("fields", "files(id,name,mimeType,createdTime,modifiedTime,webViewLink)")

	var list driveListResponse
	if err := d.api.getJSON(ctx, cred, driveEndpoint, params, &list); err != nil {
		return models.EmptyResult(models.SourceDrive), err
	}

	result := models.EmptyResult(models.SourceDrive)
	for _, file := range list.Files {
		name := file.Name
		if name == "" {
			name = "Untitled"
		}

		result.Artifacts = append(result.Artifacts, models.Artifact{
			ID:         uuid.NewString(),
			Source:     models.SourceDrive,
			Type:       mimeToArtifactType(file.MimeType),
			Title:      name,
			URL:        file.WebViewLink,
			CreatedAt:  parseRFC3339(file.CreatedTime),
			ModifiedAt: parseRFC3339(file.ModifiedTime),
			Metadata: map[string]any{
				"fileId":   file.ID,
				"mimeType": file.MimeType,
			},
		})

		timestamp := time.Now().UTC()
		if t := parseRFC3339(file.ModifiedTime); t != nil {
			timestamp = *t
		}
		result.Moments = append(result.Moments, models.Moment{
			ID:        uuid.NewString(),
			Source:    models.SourceDrive,
			Timestamp: timestamp,
			Type:      models.MomentDocumentEdit,
			Summary:   "Edited: " + name,
			PeopleIDs: []string{},
			Metadata: map[string]any{
				"fileId":   file.ID,
				"mimeType": file.MimeType,
			},
		})
	}

	d.logger.Debug("ingested", zap.Int("artifacts", len(result.Artifacts)))

	return result, nil
}
