package jecna

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"jecna-client/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	gradesPageName       = "grades page"
	behaviourSubjectName = "Chování"
	gradeDateLayout      = "02.01.2006"
)

var (
	gradeDetailsRegex   = regexp.MustCompile(`(?:(.*) )?\((\d{2}\.\d{2}\.\d{4}), (.*)\)$`)
	subjectNameRegex    = regexp.MustCompile(`^(.*?)(?: \(([\p{L}\d]{1,4})\))?$`)
	gradeIdRegex        = regexp.MustCompile(`scoreId=(\d+)`)
	notificationIdRegex = regexp.MustCompile(`userStudentRecordId=(\d+)`)
)

func parseError(reason string, err error) *ParseError {
	return &ParseError{Page: gradesPageName, Reason: reason, Err: err}
}

// ParseGradesPage parses the html of /score/student, any structural
// mismatch results in a *ParseError.
func ParseGradesPage(r io.Reader) (GradesPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return GradesPage{}, parseError("read html", err)
	}

	builder := &GradesPageBuilder{}

	var rowErr error
	doc.Find(".score > tbody > tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		th := row.Find("th").First()
		if th.Length() == 0 {
			rowErr = parseError(fmt.Sprintf("row %d has no subject name", i), nil)
			return false
		}
		td := row.Find("td").First()
		if td.Length() == 0 {
			rowErr = parseError(fmt.Sprintf("row %d has no content", i), nil)
			return false
		}
		name := parseSubjectName(htmlutil.Text(th))

		if name.Full == behaviourSubjectName {
			behaviour, err := parseBehaviour(row, td)
			if err != nil {
				rowErr = err
				return false
			}
			builder.SetBehaviour(behaviour)
			return true
		}

		grades, err := parseSubjectGrades(td)
		if err != nil {
			rowErr = fmt.Errorf("subject %s: %w", name.Full, err)
			return false
		}
		subject := Subject{Name: name, Grades: grades}
		finalGrade := row.Find(".scoreFinal").First()
		if finalGrade.Length() > 0 {
			final, err := parseFinalGrade(finalGrade)
			if err != nil {
				rowErr = fmt.Errorf("subject %s: %w", name.Full, err)
				return false
			}
			subject.FinalGrade = &final
		}
		builder.AddSubject(subject)
		return true
	})
	if rowErr != nil {
		return GradesPage{}, rowErr
	}

	yearText := htmlutil.Text(doc.Find("#schoolYearId > option[selected]").First())
	year, err := ParseSchoolYear(yearText)
	if err != nil {
		return GradesPage{}, parseError("selected school year", err)
	}
	builder.SetSchoolYear(year)

	halfText := htmlutil.Text(doc.Find("#schoolYearHalfId > option[selected]").First())
	half, err := ParseSchoolYearHalf(halfText)
	if err != nil {
		return GradesPage{}, parseError("selected school year half", err)
	}
	builder.SetHalf(half)

	page, err := builder.Build()
	if err != nil {
		return GradesPage{}, parseError("incomplete page", err)
	}
	return page, nil
}

func parseSubjectName(text string) Name {
	groups := subjectNameRegex.FindStringSubmatch(text)
	if groups == nil {
		return Name{Full: text}
	}
	return Name{Full: groups[1], Short: groups[2]}
}

func parseSubjectGrades(td *goquery.Selection) (Grades, error) {
	builder := &GradesBuilder{}
	partition := Undivided()

	var err error
	td.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if child.HasClass("subjectPart") {
			label := strings.TrimSuffix(htmlutil.Text(child), ":")
			partition = PartOf(strings.TrimSpace(label))
			return true
		}
		if !child.Is("a") {
			return true
		}
		var grade Grade
		grade, err = parseGrade(child)
		if err != nil {
			return false
		}
		builder.Add(partition, grade)
		return true
	})
	if err != nil {
		return Grades{}, err
	}
	return builder.Build(), nil
}

func parseGrade(a *goquery.Selection) (Grade, error) {
	valueText := htmlutil.Text(a.Find(".value").First())
	if valueText == "" {
		return Grade{}, parseError("grade has no value", nil)
	}
	value, _ := utf8.DecodeRuneInString(valueText)

	href, ok := a.Attr("href")
	if !ok {
		return Grade{}, parseError("grade has no link", nil)
	}
	idGroups := gradeIdRegex.FindStringSubmatch(href)
	if idGroups == nil {
		return Grade{}, parseError(fmt.Sprintf("grade link %q has no id", href), nil)
	}
	id, err := strconv.Atoi(idGroups[1])
	if err != nil {
		return Grade{}, parseError("grade id", err)
	}

	grade := Grade{
		Value: value,
		Small: a.HasClass("scoreSmall"),
		ID:    id,
	}

	title := htmlutil.Normalize(a.AttrOr("title", ""))
	details := gradeDetailsRegex.FindStringSubmatch(title)
	if details == nil {
		return grade, nil
	}
	date, err := time.Parse(gradeDateLayout, details[2])
	if err != nil {
		return Grade{}, parseError("grade date", err)
	}
	grade.Description = details[1]
	grade.ReceiveDate = date
	grade.Teacher = &Name{
		Full:  details[3],
		Short: htmlutil.Text(a.Find(".employee").First()),
	}
	return grade, nil
}

func parseFinalGrade(sel *goquery.Selection) (FinalGrade, error) {
	text := htmlutil.Text(sel)
	if text == "U" {
		return FinalGrade{Kind: FinalGradeExcused}, nil
	}
	if sel.HasClass("scoreValueWarning") {
		switch text {
		case "5?":
			return FinalGrade{Kind: FinalGradeGradesWarning}, nil
		case "N?":
			return FinalGrade{Kind: FinalGradeAbsenceWarning}, nil
		case "5? N?", "N? 5?":
			return FinalGrade{Kind: FinalGradeGradesAndAbsenceWarning}, nil
		}
		return FinalGrade{}, parseError(fmt.Sprintf("unknown final grade warning %q", text), nil)
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return FinalGrade{}, parseError("final grade", err)
	}
	return FinalGrade{Kind: FinalGradeValue, Value: value}, nil
}

func parseBehaviour(row, td *goquery.Selection) (Behaviour, error) {
	finalGrade := row.Find(".scoreFinal").First()
	if finalGrade.Length() == 0 {
		return Behaviour{}, parseError("behaviour has no final grade", nil)
	}
	final, err := parseFinalGrade(finalGrade)
	if err != nil {
		return Behaviour{}, err
	}

	notifications := []NotificationReference{}
	td.Find("span > a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		icon := a.Find(".sprite-icon-16").First()
		if icon.Length() == 0 {
			err = parseError("notification has no icon", nil)
			return false
		}
		kind := NotificationBad
		if icon.HasClass("sprite-icon-tick-16") {
			kind = NotificationGood
		}
		recordId := 0
		groups := notificationIdRegex.FindStringSubmatch(a.AttrOr("href", ""))
		if groups != nil {
			recordId, _ = strconv.Atoi(groups[1])
		}
		notifications = append(notifications, NotificationReference{
			Type:     kind,
			Message:  htmlutil.Text(a.Find(".label")),
			RecordID: recordId,
		})
		return true
	})
	if err != nil {
		return Behaviour{}, err
	}

	return Behaviour{
		Notifications: notifications,
		FinalGrade:    final,
	}, nil
}
