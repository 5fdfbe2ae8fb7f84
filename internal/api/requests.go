// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"github.com/osusync/bridge/internal/backup"
	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/filter"
	"github.com/osusync/bridge/internal/media"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/replayexport"
	"github.com/osusync/bridge/internal/resolver"
	syncpkg "github.com/osusync/bridge/internal/sync"
	"github.com/osusync/bridge/internal/syncerr"
	"github.com/osusync/bridge/internal/unified"
)

// scanRequest is the body of POST /api/v1/scan.
type scanRequest struct {
	Root           string `json:"root"`
	SkipHashing    bool   `json:"skip_hashing"`
	UseLegacyIndex bool   `json:"use_legacy_index"`
}

// filterRequest is the wire shape of filter.Criteria.
type filterRequest struct {
	StarRatingMin *float64 `json:"star_rating_min,omitempty"`
	StarRatingMax *float64 `json:"star_rating_max,omitempty"`
	Modes         []string `json:"modes,omitempty"`
	RankStatuses  []string `json:"rank_statuses,omitempty"`
	SearchQuery   string   `json:"search_query,omitempty"`
	ArtistFilter  string   `json:"artist_filter,omitempty"`
	MapperFilter  string   `json:"mapper_filter,omitempty"`
}

func (f *filterRequest) toCriteria() (filter.Criteria, error) {
	var c filter.Criteria
	if f == nil {
		return c, nil
	}
	c.StarRatingMin = f.StarRatingMin
	c.StarRatingMax = f.StarRatingMax
	c.SearchQuery = f.SearchQuery
	c.ArtistFilter = f.ArtistFilter
	c.MapperFilter = f.MapperFilter
	if len(f.Modes) > 0 {
		modes := make([]models.GameMode, 0, len(f.Modes))
		for _, m := range f.Modes {
			mode, err := parseGameMode(m)
			if err != nil {
				return c, err
			}
			modes = append(modes, mode)
		}
		c = c.WithModes(modes...)
	}
	if len(f.RankStatuses) > 0 {
		statuses := make([]models.RankedStatus, 0, len(f.RankStatuses))
		for _, s := range f.RankStatuses {
			status, err := parseRankedStatus(s)
			if err != nil {
				return c, err
			}
			statuses = append(statuses, status)
		}
		c = c.WithRankStatuses(statuses...)
	}
	return c, nil
}

func parseGameMode(s string) (models.GameMode, error) {
	switch s {
	case "osu":
		return models.ModeOsu, nil
	case "taiko":
		return models.ModeTaiko, nil
	case "catch":
		return models.ModeCatch, nil
	case "mania":
		return models.ModeMania, nil
	default:
		return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised game mode: "+s)
	}
}

func parseRankedStatus(s string) (models.RankedStatus, error) {
	switch s {
	case "graveyard":
		return models.StatusGraveyard, nil
	case "wip":
		return models.StatusWIP, nil
	case "pending":
		return models.StatusPending, nil
	case "ranked":
		return models.StatusRanked, nil
	case "approved":
		return models.StatusApproved, nil
	case "qualified":
		return models.StatusQualified, nil
	case "loved":
		return models.StatusLoved, nil
	default:
		return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised ranked status: "+s)
	}
}

// startSyncRequest is the body of POST /api/v1/sync/start.
//
// ResolverMode picks the conflict policy applied to every duplicate the
// planner finds: "skip", "replace" and "keep_both" apply that action to
// every duplicate unconditionally (resolver.Auto); "ask", "interactive"
// and "sticky" answer each duplicate through the websocket prompt round
// trip (see parseResolverMode).
type startSyncRequest struct {
	SourceRoot    string         `json:"source_root"`
	TargetRoot    string         `json:"target_root"`
	Direction     string         `json:"direction"`
	SkipHashing   bool           `json:"skip_hashing"`
	Filter        *filterRequest `json:"filter,omitempty"`
	DupStrategies []string       `json:"duplicate_strategies,omitempty"`
	ResolverMode  string         `json:"resolver_mode"`
}

func (req *startSyncRequest) toConfig(prompt resolver.Callback) (syncpkg.Config, error) {
	var cfg syncpkg.Config
	cfg.SourceRoot = req.SourceRoot
	cfg.TargetRoot = req.TargetRoot
	cfg.SkipHashing = req.SkipHashing

	switch req.Direction {
	case "stable_to_lazer", "":
		cfg.Direction = syncpkg.StableToLazer
	case "lazer_to_stable":
		cfg.Direction = syncpkg.LazerToStable
	default:
		return cfg, syncerr.New(syncerr.KindConfiguration, "unrecognised sync direction: "+req.Direction)
	}

	criteria, err := req.Filter.toCriteria()
	if err != nil {
		return cfg, err
	}
	cfg.Filter = criteria

	strategy, err := parseStrategies(req.DupStrategies)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strategy

	res, err := parseResolverMode(req.ResolverMode, prompt)
	if err != nil {
		return cfg, err
	}
	cfg.Resolver = res

	return cfg, nil
}

func parseStrategies(names []string) (dupindex.Strategy, error) {
	if len(names) == 0 {
		return dupindex.Composite, nil
	}
	var strat dupindex.Strategy
	for _, n := range names {
		switch n {
		case "hash":
			strat |= dupindex.ByHash
		case "set_id":
			strat |= dupindex.BySetID
		case "metadata":
			strat |= dupindex.ByMetadata
		default:
			return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised duplicate strategy: "+n)
		}
	}
	return strat, nil
}

// parseResolverMode builds the conflict resolver for one sync. The
// ask/interactive/sticky modes block each duplicate on prompt — the
// websocket duplicate_prompt/duplicate_reply round trip — so they need
// a connected UI to answer; "ask" without a prompt degrades to skip,
// the other two are refused outright.
func parseResolverMode(mode string, prompt resolver.Callback) (resolver.Resolver, error) {
	switch mode {
	case "skip", "":
		return resolver.Auto{Action: resolver.ActionSkip}, nil
	case "replace":
		return resolver.Auto{Action: resolver.ActionReplace}, nil
	case "keep_both":
		return resolver.Auto{Action: resolver.ActionKeepBoth}, nil
	case "ask":
		return resolver.Configured{Default: resolver.ConfiguredAsk, Callback: prompt}, nil
	case "interactive":
		if prompt == nil {
			return nil, syncerr.New(syncerr.KindConfiguration, "interactive resolver mode requires a duplicate-prompt channel")
		}
		return resolver.Interactive{Callback: prompt}, nil
	case "sticky":
		if prompt == nil {
			return nil, syncerr.New(syncerr.KindConfiguration, "sticky resolver mode requires a duplicate-prompt channel")
		}
		return resolver.NewSticky(prompt), nil
	default:
		return nil, syncerr.New(syncerr.KindConfiguration, "unrecognised resolver mode: "+mode)
	}
}

// proceedRequest is the body of POST /api/v1/sync/proceed.
type proceedRequest struct {
	Selection []int `json:"selection"`
}

// buildBackupRequest is the body of POST /api/v1/backup.
type buildBackupRequest struct {
	Target      string `json:"target"`
	DestDir     string `json:"dest_dir"`
	Mode        string `json:"mode"`
	Compression string `json:"compression"`
}

func (req *buildBackupRequest) toArgs() (mode backup.Mode, level backup.CompressionLevel, err error) {
	switch req.Mode {
	case "full", "":
		mode = backup.ModeFull
	case "incremental":
		mode = backup.ModeIncremental
	default:
		return "", 0, syncerr.New(syncerr.KindConfiguration, "unrecognised backup mode: "+req.Mode)
	}
	switch req.Compression {
	case "fast":
		level = backup.CompressionFast
	case "normal", "":
		level = backup.CompressionNormal
	case "best":
		level = backup.CompressionBest
	default:
		return "", 0, syncerr.New(syncerr.KindConfiguration, "unrecognised compression level: "+req.Compression)
	}
	return mode, level, nil
}

// restoreRequest is the body of POST /api/v1/restore.
type restoreRequest struct {
	ArchivePath string `json:"archive_path"`
	DestRoot    string `json:"dest_root"`
}

// unifiedSetupRequest is the body of POST /api/v1/unified/setup.
type unifiedSetupRequest struct {
	Mode       string   `json:"mode"`
	Resources  []string `json:"resources"`
	StableRoot string   `json:"stable_root"`
	LazerRoot  string   `json:"lazer_root"`
	SharedRoot string   `json:"shared_root,omitempty"`
}

func (req *unifiedSetupRequest) toConfig() (unified.Config, error) {
	var cfg unified.Config
	cfg.StableRoot = req.StableRoot
	cfg.LazerRoot = req.LazerRoot
	cfg.SharedRoot = req.SharedRoot

	switch req.Mode {
	case "stable_master", "":
		cfg.Mode = unified.StableMaster
	case "lazer_master":
		cfg.Mode = unified.LazerMaster
	case "true_unified":
		cfg.Mode = unified.TrueUnified
	default:
		return cfg, syncerr.New(syncerr.KindConfiguration, "unrecognised unified-storage mode: "+req.Mode)
	}

	if len(req.Resources) == 0 {
		cfg.Resources = []unified.Resource{unified.ResourceBeatmaps}
		return cfg, nil
	}
	resources := make([]unified.Resource, 0, len(req.Resources))
	for _, r := range req.Resources {
		res, err := parseResource(r)
		if err != nil {
			return cfg, err
		}
		resources = append(resources, res)
	}
	cfg.Resources = resources
	return cfg, nil
}

// extractMediaRequest is the body of POST /api/v1/media/extract.
type extractMediaRequest struct {
	Root         string `json:"root"`
	LazerSource  bool   `json:"lazer_source"`
	Kind         string `json:"kind"`
	Organisation string `json:"organisation"`
	OutputDir    string `json:"output_dir"`
	SkipHashing  bool   `json:"skip_hashing"`
}

func (req *extractMediaRequest) toArgs() (media.Kind, media.Organisation, error) {
	var kind media.Kind
	switch req.Kind {
	case "audio":
		kind = media.KindAudio
	case "backgrounds":
		kind = media.KindBackgrounds
	case "both", "":
		kind = media.KindBoth
	default:
		return 0, 0, syncerr.New(syncerr.KindConfiguration, "unrecognised media kind: "+req.Kind)
	}

	var org media.Organisation
	switch req.Organisation {
	case "flat", "":
		org = media.OrganisationFlat
	case "by_artist":
		org = media.OrganisationByArtist
	case "by_beatmap":
		org = media.OrganisationByBeatmap
	default:
		return 0, 0, syncerr.New(syncerr.KindConfiguration, "unrecognised output organisation: "+req.Organisation)
	}

	return kind, org, nil
}

// exportReplaysRequest is the body of POST /api/v1/replays/export. The
// filter fields narrow the export; all of them unset exports every
// replay the score index knows about.
type exportReplaysRequest struct {
	Root         string `json:"root"`
	Organisation string `json:"organisation"`
	OutputDir    string `json:"output_dir"`

	MinGrade      string   `json:"min_grade,omitempty"`
	Modes         []string `json:"modes,omitempty"`
	AfterUnix     *int64   `json:"after_unix,omitempty"`
	BeforeUnix    *int64   `json:"before_unix,omitempty"`
	Player        string   `json:"player,omitempty"`
	BeatmapSearch string   `json:"beatmap_search,omitempty"`
}

func (req *exportReplaysRequest) toFilter() (replayexport.Filter, error) {
	var f replayexport.Filter
	if req.MinGrade != "" {
		grade, err := parseGrade(req.MinGrade)
		if err != nil {
			return f, err
		}
		f = f.WithMinGrade(grade)
	}
	if len(req.Modes) > 0 {
		modes := make([]models.GameMode, 0, len(req.Modes))
		for _, m := range req.Modes {
			mode, err := parseGameMode(m)
			if err != nil {
				return f, err
			}
			modes = append(modes, mode)
		}
		f = f.WithModes(modes...)
	}
	if req.AfterUnix != nil {
		f = f.WithAfterUnix(*req.AfterUnix)
	}
	if req.BeforeUnix != nil {
		f = f.WithBeforeUnix(*req.BeforeUnix)
	}
	f = f.WithPlayerName(req.Player)
	f = f.WithBeatmapSearch(req.BeatmapSearch)
	return f, nil
}

func parseGrade(s string) (models.Grade, error) {
	switch s {
	case "ss":
		return models.GradeSS, nil
	case "s":
		return models.GradeS, nil
	case "a":
		return models.GradeA, nil
	case "b":
		return models.GradeB, nil
	case "c":
		return models.GradeC, nil
	case "d":
		return models.GradeD, nil
	case "f":
		return models.GradeF, nil
	default:
		return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised grade: "+s)
	}
}

func (req *exportReplaysRequest) toOrganisation() (replayexport.Organisation, error) {
	switch req.Organisation {
	case "flat", "":
		return replayexport.OrganisationFlat, nil
	case "by_beatmap":
		return replayexport.OrganisationByBeatmap, nil
	case "by_date":
		return replayexport.OrganisationByDate, nil
	case "by_player":
		return replayexport.OrganisationByPlayer, nil
	case "by_grade":
		return replayexport.OrganisationByGrade, nil
	default:
		return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised output organisation: "+req.Organisation)
	}
}

// exportSetsRequest is the body of POST /api/v1/sets/export.
type exportSetsRequest struct {
	Root      string   `json:"root"`
	Folders   []string `json:"folders,omitempty"`
	OutputDir string   `json:"output_dir"`
}

// importSetsRequest is the body of POST /api/v1/sets/import.
type importSetsRequest struct {
	Archives []string `json:"archives"`
	Root     string   `json:"root"`
}

// skipSetRequest is the body of POST /api/v1/skiplist.
type skipSetRequest struct {
	SetID      *int32 `json:"set_id,omitempty"`
	FolderName string `json:"folder_name,omitempty"`
}

// syncCollectionsRequest is the body of POST /api/v1/collections/sync.
type syncCollectionsRequest struct {
	SourceRoot  string `json:"source_root"`
	TargetRoot  string `json:"target_root"`
	LazerTarget bool   `json:"lazer_target"`
}

func parseResource(s string) (unified.Resource, error) {
	switch s {
	case "beatmaps":
		return unified.ResourceBeatmaps, nil
	case "skins":
		return unified.ResourceSkins, nil
	case "replays":
		return unified.ResourceReplays, nil
	case "screenshots":
		return unified.ResourceScreenshots, nil
	case "exports":
		return unified.ResourceExports, nil
	case "backgrounds":
		return unified.ResourceBackgrounds, nil
	default:
		return 0, syncerr.New(syncerr.KindConfiguration, "unrecognised unified-storage resource: "+s)
	}
}
