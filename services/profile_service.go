package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SearchPageSize is the windowing size for search results.
const SearchPageSize = 24

// SearchFilters are the optional predicates of the browse listing. Zero
// values mean "no constraint".
type SearchFilters struct {
	AgeMin       int    `json:"ageMin"`
	AgeMax       int    `json:"ageMax"`
	City         string `json:"city"`
	State        string `json:"state"`
	PrayerStatus string `json:"prayerStatus"`
	Offset       int    `json:"offset"`
	Limit        int    `json:"limit"`
}

type ProfileService struct {
	Dynamo *DynamoService
}

// SaveProfile creates or replaces a user's profile row.
func (ps *ProfileService) SaveProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		return nil, apperrors.InvalidArg("userId is required")
	}
	if len(profile.Photos) > models.MaxProfilePhotos {
		return nil, apperrors.InvalidArg(fmt.Sprintf("you can upload up to %d photos", models.MaxProfilePhotos))
	}
	profile.Gender = models.NormalizeGender(profile.Gender)

	now := models.NowTimestamp()
	if profile.CreatedAt == "" {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	if err := ps.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		log.Printf("❌ Failed to save profile %s: %v", profile.UserID, err)
		return nil, apperrors.ErrStore("save profile", err)
	}
	return &profile, nil
}

// GetProfile retrieves a profile by user id without any visibility gate;
// used for self-views and internal lookups.
func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ps.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, apperrors.ErrStore("get profile", err)
	}
	if item == nil {
		return nil, apperrors.ErrProfileNotFound
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// GetProfileForViewer retrieves a target profile gated by the gender
// visibility policy. A viewer with no gender set is denied everything; a
// same-gender target is denied regardless of its isPublic flag.
func (ps *ProfileService) GetProfileForViewer(ctx context.Context, viewerID, targetID string) (*models.UserProfile, error) {
	viewer, err := ps.GetProfile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if models.NormalizeGender(viewer.Gender) == models.GenderUnset {
		return nil, apperrors.ErrGenderNotSet
	}

	target, err := ps.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !models.OppositeGenders(viewer.Gender, target.Gender) {
		return nil, apperrors.ErrProfileNotVisible
	}

	ps.recordView(ctx, viewerID, targetID)
	return target, nil
}

// recordView inserts a profile view event; failures are logged and ignored.
func (ps *ProfileService) recordView(ctx context.Context, viewerID, viewedID string) {
	event := models.ProfileViewEvent{
		ViewedID:  viewedID,
		CreatedAt: models.NowTimestamp(),
		ViewerID:  viewerID,
	}
	if err := ps.Dynamo.PutItem(ctx, models.ProfileViewEventsTable, event); err != nil {
		log.Printf("⚠️ Could not record profile view %s -> %s: %v", viewerID, viewedID, err)
	}
}

// CountRecentViews counts profile views received in the trailing window.
func (ps *ProfileService) CountRecentViews(ctx context.Context, userID string, window time.Duration) (int, error) {
	since := time.Now().UTC().Add(-window).Format(models.TimestampLayout)
	keyCondition := "viewedId = :viewed AND createdAt >= :since"
	expressionValues := map[string]types.AttributeValue{
		":viewed": &types.AttributeValueMemberS{Value: userID},
		":since":  &types.AttributeValueMemberS{Value: since},
	}

	count, err := ps.Dynamo.QueryCount(ctx, models.ProfileViewEventsTable, "", keyCondition, expressionValues, nil, "")
	if err != nil {
		return 0, apperrors.ErrStore("count profile views", err)
	}
	return int(count), nil
}

// GetProfileBriefs batch-fetches the list-rendering subset for a set of
// user ids in a single store call. Missing profiles are simply absent from
// the returned map; callers tolerate nil briefs.
func (ps *ProfileService) GetProfileBriefs(ctx context.Context, userIDs []string) (map[string]models.ProfileBrief, error) {
	briefs := make(map[string]models.ProfileBrief, len(userIDs))
	if len(userIDs) == 0 {
		return briefs, nil
	}

	seen := make(map[string]struct{}, len(userIDs))
	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := ps.Dynamo.BatchGetItems(ctx, models.UserProfilesTable, keys)
	if err != nil {
		return nil, apperrors.ErrStore("batch get profiles", err)
	}

	var profiles []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile briefs: %w", err)
	}
	for _, p := range profiles {
		briefs[p.UserID] = p.Brief()
	}
	return briefs, nil
}

// SearchProfiles runs the gender-gated browse listing: public profiles of
// the opposite gender, optionally narrowed by age/city/state/prayer
// filters, ordered by updatedAt descending and windowed by offset/limit.
func (ps *ProfileService) SearchProfiles(ctx context.Context, viewerID string, filters SearchFilters) ([]models.UserProfile, error) {
	viewer, err := ps.GetProfile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	viewerGender := models.NormalizeGender(viewer.Gender)
	if viewerGender == models.GenderUnset {
		return nil, apperrors.ErrGenderNotSet
	}

	targetGender := models.GenderFemale
	if viewerGender == models.GenderFemale {
		targetGender = models.GenderMale
	}

	filterExpression := "gender = :gender AND isPublic = :public AND userId <> :viewer"
	expressionValues := map[string]types.AttributeValue{
		":gender": &types.AttributeValueMemberS{Value: targetGender},
		":public": &types.AttributeValueMemberBOOL{Value: true},
		":viewer": &types.AttributeValueMemberS{Value: viewerID},
	}

	var candidates []models.UserProfile
	err = ps.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, filterExpression, expressionValues, nil, nil, &candidates)
	if err != nil {
		log.Printf("❌ Error scanning profiles: %v", err)
		return nil, apperrors.ErrStore("search profiles", err)
	}

	matches := candidates[:0]
	for _, p := range candidates {
		if matchesFilters(p, filters) {
			matches = append(matches, p)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UpdatedAt > matches[j].UpdatedAt
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = SearchPageSize
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return []models.UserProfile{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func matchesFilters(p models.UserProfile, f SearchFilters) bool {
	if f.AgeMin > 0 && p.Age < f.AgeMin {
		return false
	}
	if f.AgeMax > 0 && p.Age > f.AgeMax {
		return false
	}
	if c := strings.TrimSpace(f.City); c != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(c)) {
		return false
	}
	if s := strings.TrimSpace(f.State); s != "" && !strings.Contains(strings.ToLower(p.State), strings.ToLower(s)) {
		return false
	}
	if f.PrayerStatus != "" && f.PrayerStatus != "any" && p.PrayerStatus != f.PrayerStatus {
		return false
	}
	return true
}

// DeleteProfile removes a user's profile row.
func (ps *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	if err := ps.Dynamo.DeleteItem(ctx, models.UserProfilesTable, key); err != nil {
		return apperrors.ErrStore("delete profile", err)
	}
	return nil
}
