package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/assist-by/compass/internal/market"
)

// JSONRenderer는 스냅샷 배열을 JSON 문서로 출력합니다
type JSONRenderer struct {
	Indent bool
}

// Render는 스냅샷들을 JSON으로 출력합니다
func (j *JSONRenderer) Render(w io.Writer, snapshots []*market.Snapshot) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(newSnapshotViews(snapshots)); err != nil {
		return fmt.Errorf("JSON 인코딩 실패: %w", err)
	}
	return nil
}

// YAMLRenderer는 스냅샷 목록을 YAML 문서로 출력합니다
type YAMLRenderer struct{}

// Render는 스냅샷들을 YAML로 출력합니다
func (YAMLRenderer) Render(w io.Writer, snapshots []*market.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newSnapshotViews(snapshots)); err != nil {
		return fmt.Errorf("YAML 인코딩 실패: %w", err)
	}
	return enc.Close()
}
