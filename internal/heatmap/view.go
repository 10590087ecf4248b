package heatmap

import "time"

// TooltipLayout formats dates in tooltips and aria labels, e.g. "Feb 29, 2024".
const TooltipLayout = "Jan 2, 2006"

var (
	weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthNames   = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// CellView is one rendered day.
type CellView struct {
	Date    DateKey `json:"date"`
	Level   Level   `json:"level"`
	InYear  bool    `json:"inYear"`
	Today   bool    `json:"today"`
	Hovered bool    `json:"hovered"`
	Color   string  `json:"color"`
	Label   string  `json:"label"`
}

// MonthLabel places a month name above the week column containing its first day.
type MonthLabel struct {
	Name string `json:"name"`
	Week int    `json:"week"`
}

// Tooltip is the text shown for the single hovered cell.
type Tooltip struct {
	Date DateKey `json:"date"`
	Text string  `json:"text"`
}

// View is everything needed to draw the widget for one year.
type View struct {
	Year           int           `json:"year"`
	AvailableYears []int         `json:"availableYears"`
	Weekdays       []string      `json:"weekdays"`
	Months         []MonthLabel  `json:"months"`
	Weeks          [][]CellView  `json:"weeks"`
	Legend         []LegendEntry `json:"legend"`
	Tooltip        *Tooltip      `json:"tooltip,omitempty"`
	Notice         string        `json:"notice,omitempty"`
}

type viewInput struct {
	year     int
	years    []int
	activity ActivityMap
	today    DateKey
	hover    DateKey
	notice   string
}

func buildView(in viewInput) View {
	grid := Grid(in.year)

	v := View{
		Year:           in.year,
		AvailableYears: in.years,
		Weekdays:       weekdayLabels(),
		Months:         monthLabels(in.year),
		Weeks:          make([][]CellView, 0, len(grid)),
		Legend:         Legend(),
		Notice:         in.notice,
	}

	for _, week := range grid {
		cells := make([]CellView, 0, len(week))
		for _, day := range week {
			cell := newCellView(day, in)
			if cell.Hovered {
				v.Tooltip = &Tooltip{Date: cell.Date, Text: describeDay(day, cell.Today)}
			}
			cells = append(cells, cell)
		}
		v.Weeks = append(v.Weeks, cells)
	}
	return v
}

func newCellView(day time.Time, in viewInput) CellView {
	key := KeyOf(day)
	level := in.activity.Level(key)
	inYear := day.Year() == in.year

	color := MutedColor
	if inYear {
		color = level.Color()
	}

	today := key == in.today
	return CellView{
		Date:    key,
		Level:   level,
		InYear:  inYear,
		Today:   today,
		Hovered: in.hover != "" && key == in.hover,
		Color:   color,
		Label:   "Activity for " + describeDay(day, today),
	}
}

func describeDay(day time.Time, today bool) string {
	s := day.Format(TooltipLayout)
	if today {
		s += " (Today)"
	}
	return s
}

// weekdayLabels labels every other row, leaving Mon/Wed/Fri blank.
func weekdayLabels() []string {
	labels := make([]string, len(weekdayNames))
	for i, name := range weekdayNames {
		if i%2 == 0 {
			labels[i] = name
		}
	}
	return labels
}

func monthLabels(year int) []MonthLabel {
	first, _ := gridBounds(year)
	labels := make([]MonthLabel, 0, len(monthNames))
	for i, name := range monthNames {
		start := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		days := int(start.Sub(first).Hours() / 24)
		labels = append(labels, MonthLabel{Name: name, Week: days / 7})
	}
	return labels
}
