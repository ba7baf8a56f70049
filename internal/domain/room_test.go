package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoomAdmitsTags(t *testing.T) {
	tests := []struct {
		name     string
		roomTags []string
		userTags []string
		want     bool
	}{
		{
			name:     "unrestricted room admits everyone",
			roomTags: nil,
			userTags: nil,
			want:     true,
		},
		{
			name:     "unrestricted room admits tagged user",
			roomTags: nil,
			userTags: []string{"staff"},
			want:     true,
		},
		{
			name:     "matching tag admits",
			roomTags: []string{"staff", "vip"},
			userTags: []string{"vip"},
			want:     true,
		},
		{
			name:     "no overlap rejects",
			roomTags: []string{"staff"},
			userTags: []string{"guest"},
			want:     false,
		},
		{
			name:     "restricted room rejects untagged user",
			roomTags: []string{"staff"},
			userTags: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := &Room{Tags: tt.roomTags}
			assert.Equal(t, tt.want, room.AdmitsTags(tt.userTags))
		})
	}
}

func TestValidWamPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "simple", path: "lobby.wam", want: true},
		{name: "nested", path: "worlds/hq/lobby.wam", want: true},
		{name: "empty", path: "", want: false},
		{name: "wrong extension", path: "lobby.tmj", want: false},
		{name: "absolute", path: "/lobby.wam", want: false},
		{name: "traversal", path: "../other/lobby.wam", want: false},
		{name: "dot segment", path: "worlds/./lobby.wam", want: false},
		{name: "empty segment", path: "worlds//lobby.wam", want: false},
		{name: "backslash", path: "worlds\\lobby.wam", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidWamPath(tt.path))
		})
	}
}

func TestCreateRoomParamsValidate(t *testing.T) {
	worldID := uuid.New()
	templateID := uuid.New()

	tests := []struct {
		name     string
		params   CreateRoomParams
		wantCode string // Empty means no error expected
	}{
		{
			name: "valid with wam path",
			params: CreateRoomParams{
				WorldID: worldID,
				Name:    "Lobby",
				WamPath: "hq/lobby.wam",
			},
		},
		{
			name: "valid with template instead of wam path",
			params: CreateRoomParams{
				WorldID:    worldID,
				Name:       "Lobby",
				TemplateID: &templateID,
			},
		},
		{
			name: "missing world",
			params: CreateRoomParams{
				Name:    "Lobby",
				WamPath: "hq/lobby.wam",
			},
			wantCode: EINVALID,
		},
		{
			name: "missing name",
			params: CreateRoomParams{
				WorldID: worldID,
				WamPath: "hq/lobby.wam",
			},
			wantCode: EINVALID,
		},
		{
			name: "neither wam path nor template",
			params: CreateRoomParams{
				WorldID: worldID,
				Name:    "Lobby",
			},
			wantCode: EINVALID,
		},
		{
			name: "negative occupancy",
			params: CreateRoomParams{
				WorldID:      worldID,
				Name:         "Lobby",
				WamPath:      "hq/lobby.wam",
				MaxOccupancy: -1,
			},
			wantCode: EINVALID,
		},
		{
			name: "tag with spaces",
			params: CreateRoomParams{
				WorldID: worldID,
				Name:    "Lobby",
				WamPath: "hq/lobby.wam",
				Tags:    []string{"vip lounge"},
			},
			wantCode: EINVALID,
		},
		{
			name: "oversized properties",
			params: CreateRoomParams{
				WorldID:    worldID,
				Name:       "Lobby",
				WamPath:    "hq/lobby.wam",
				Properties: append([]byte(`{"pad":"`), append(make([]byte, MaxPropertiesSize), '"', '}')...),
			},
			wantCode: ETOOLARGE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, ErrorCode(err))
		})
	}
}
