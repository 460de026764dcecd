// Package puzzle 加载内置的填字游戏并校验作答
package puzzle

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"eduverse_backend/internal/util"

	"gopkg.in/yaml.v3"
)

//go:embed puzzles.yaml
var builtin []byte

type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

type Clue struct {
	Number    int       `yaml:"number" json:"number"`
	Direction Direction `yaml:"direction" json:"direction"`
	Clue      string    `yaml:"clue" json:"clue"`
	Answer    string    `yaml:"answer" json:"-"`
	Row       int       `yaml:"row" json:"row"`
	Col       int       `yaml:"col" json:"col"`
}

func (c Clue) Len() int { return len(c.Answer) }

// cell 返回第 i 个字母所在的格子
func (c Clue) cell(i int) (int, int) {
	if c.Direction == Across {
		return c.Row, c.Col + i
	}
	return c.Row + i, c.Col
}

type Puzzle struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Size  int    `yaml:"size"`
	Clues []Clue `yaml:"clues"`

	solution map[string]byte
}

// View 不包含答案的展示结构，grid 中 0 为黑格 1 为填字格
type View struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Size  int       `json:"size"`
	Grid  [][]int   `json:"grid"`
	Clues ViewClues `json:"clues"`
}

type ViewClues struct {
	Across []ClueView `json:"across"`
	Down   []ClueView `json:"down"`
}

type ClueView struct {
	Number int    `json:"number"`
	Clue   string `json:"clue"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Len    int    `json:"len"`
}

type ClueRef struct {
	Number    int       `json:"number"`
	Direction Direction `json:"direction"`
}

type Result struct {
	Solved    bool      `json:"solved"`
	Incorrect []ClueRef `json:"incorrect"`
}

func cellKey(r, c int) string {
	return fmt.Sprintf("%d-%d", r, c)
}

// build 校验线索并生成答案格，交叉格字母必须一致
func (p *Puzzle) build() error {
	if p.ID == "" || p.Size <= 0 {
		return fmt.Errorf("puzzle %q: id and size are required", p.ID)
	}
	p.solution = make(map[string]byte)
	for _, c := range p.Clues {
		if c.Direction != Across && c.Direction != Down {
			return fmt.Errorf("puzzle %s clue %d: bad direction %q", p.ID, c.Number, c.Direction)
		}
		answer := strings.ToUpper(c.Answer)
		for i := 0; i < len(answer); i++ {
			r, col := c.cell(i)
			if r < 0 || col < 0 || r >= p.Size || col >= p.Size {
				return fmt.Errorf("puzzle %s clue %d%s: out of grid", p.ID, c.Number, c.Direction)
			}
			key := cellKey(r, col)
			if prev, ok := p.solution[key]; ok && prev != answer[i] {
				return fmt.Errorf("puzzle %s clue %d%s: letter clash at %s", p.ID, c.Number, c.Direction, key)
			}
			p.solution[key] = answer[i]
		}
	}
	return nil
}

func (p *Puzzle) View() View {
	grid := make([][]int, p.Size)
	for r := range grid {
		grid[r] = make([]int, p.Size)
		for c := range grid[r] {
			if _, ok := p.solution[cellKey(r, c)]; ok {
				grid[r][c] = 1
			}
		}
	}
	v := View{ID: p.ID, Title: p.Title, Size: p.Size, Grid: grid,
		Clues: ViewClues{Across: []ClueView{}, Down: []ClueView{}}}
	for _, c := range p.Clues {
		cv := ClueView{Number: c.Number, Clue: c.Clue, Row: c.Row, Col: c.Col, Len: c.Len()}
		if c.Direction == Across {
			v.Clues.Across = append(v.Clues.Across, cv)
		} else {
			v.Clues.Down = append(v.Clues.Down, cv)
		}
	}
	return v
}

// Check 不区分大小写地核对每条线索，cells 的 key 形如 "row-col"
func (p *Puzzle) Check(cells map[string]string) Result {
	res := Result{Incorrect: []ClueRef{}}
	for _, c := range p.Clues {
		answer := strings.ToUpper(c.Answer)
		for i := 0; i < len(answer); i++ {
			r, col := c.cell(i)
			got := strings.ToUpper(strings.TrimSpace(cells[cellKey(r, col)]))
			if got != string(answer[i]) {
				res.Incorrect = append(res.Incorrect, ClueRef{Number: c.Number, Direction: c.Direction})
				break
			}
		}
	}
	res.Solved = len(res.Incorrect) == 0
	return res
}

// Registry 内置谜题集合，加载后只读
type Registry struct {
	puzzles map[string]*Puzzle
}

func Parse(data []byte) (*Registry, error) {
	var doc struct {
		Puzzles []*Puzzle `yaml:"puzzles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse puzzles: %w", err)
	}
	reg := &Registry{puzzles: make(map[string]*Puzzle, len(doc.Puzzles))}
	for _, p := range doc.Puzzles {
		if err := p.build(); err != nil {
			return nil, err
		}
		reg.puzzles[p.ID] = p
	}
	return reg, nil
}

func LoadBuiltin() (*Registry, error) {
	return Parse(builtin)
}

func (r *Registry) Get(id string) (*Puzzle, error) {
	p, ok := r.puzzles[id]
	if !ok {
		return nil, util.NotFoundf("puzzle %s", id)
	}
	return p, nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.puzzles))
	for id := range r.puzzles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
