// Package main provides localization for the bagannotate CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":             "入力",
		"Output":            "出力先",
		"Video and Quality": "動画と品質",
		"Overlay":           "オーバーレイ",
		"Debug":             "デバッグ",
		"Logging":           "ログ",

		// Root command
		"Convert ROS bag image topics to video with annotation boxes": "ROS bag の画像トピックをアノテーション付き動画に変換",
		"bagannotate reads an image topic from a ROS bag, maps a tab-delimited box table onto its frames and writes an MP4 video.": "bagannotateはROS bagの画像トピックを読み込み、タブ区切りのボックス表をフレームに対応付けてMP4動画を書き出します。",

		// Convert command
		"Convert a bag image topic to MP4 video": "bag の画像トピックをMP4動画に変換",
		"Read every image of the topic, attach the annotation boxes to their frames and write an MP4 video.": "トピックの全画像を読み込み、アノテーションのボックスを各フレームに対応付けてMP4動画を書き出します。",
		"Converting %s to %s (%s)...": "%s を %s に変換中 (%s)...",

		// Info command
		"Show the topics of a bag":  "bag のトピック一覧を表示",
		"Print the summary as YAML": "サマリーをYAMLで出力",
		"bag argument is required":  "bag 引数が必要です",
		"path:":                     "パス:",
		"version:":                  "バージョン:",
		"duration:":                 "長さ:",
		"start:":                    "開始:",
		"end:":                      "終了:",
		"size:":                     "サイズ:",
		"messages:":                 "メッセージ:",
		"compression:":              "圧縮:",
		"Type":                      "型",
		"Frequency (Hz)":            "周波数 (Hz)",
		"Image":                     "画像",

		// Lookup command
		"Print the boxes shown at playback positions": "再生位置に表示されるボックスを出力",
		"Map each playback position in milliseconds to a frame and print the boxes attached to that frame.": "ミリ秒単位の再生位置をフレームに対応付け、そのフレームのボックスを出力します。",
		"bag and at least one position are required": "bag と1つ以上の再生位置が必要です",
		"invalid position %q":                         "不正な再生位置 %q",
		"Annotations not loaded: %s":                  "アノテーションを読み込めませんでした: %s",
		"Position (ms)":                               "再生位置 (ms)",
		"Frame":                                       "フレーム",
		"Box ID":                                      "ボックスID",
		"Detail":                                      "詳細",

		// Version command
		"Show version information": "バージョン情報を表示",
		"bagannotate version %s":   "bagannotate バージョン %s",
		"avc1 encoder: %s":         "avc1 エンコーダ: %s",
		"available":                "利用可能",

		"not available (ffmpeg not found)": "利用不可 (ffmpeg が見つかりません)",

		// Input flags
		"YAML configuration file": "YAML設定ファイル",
		"Image topic (default: the only image topic in the bag)": "画像トピック（デフォルト: bag 内の唯一の画像トピック）",
		"Tab-delimited box table with a Rect_id column":          "Rect_id 列を持つタブ区切りのボックス表",

		// Output flags
		"Output video path (.mp4, .m4v or .mov)":             "出力動画のパス（.mp4, .m4v, .mov）",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Video flags
		"Codec tag (jpeg or avc1)":                                        "コーデックタグ（jpeg または avc1）",
		"JPEG quality for the jpeg codec (1-100)":                         "jpeg コーデックのJPEG品質（1-100）",
		"CRF for the avc1 codec (0-51, lower is better)":                  "avc1 コーデックのCRF値（0-51、低いほど高品質）",
		"Target bitrate in kbps for the avc1 codec (0 = encoder default)": "avc1 コーデックの目標ビットレート kbps（0 = エンコーダー既定値）",
		"Path to the ffmpeg executable":                                   "ffmpeg 実行ファイルのパス",
		"Fail instead of falling back to jpeg when ffmpeg is missing":     "ffmpeg がない場合に jpeg へフォールバックせず失敗する",

		// Overlay flags
		"Draw annotation boxes into the video":   "アノテーションのボックスを動画に描画",
		"Box color (hex, e.g., #c80000)":         "ボックスの色（16進数、例: #c80000）",
		"Box line width in pixels":               "ボックスの線幅（ピクセル）",
		"Label each box with its id":             "各ボックスにIDを表示",
		"Overlay workers (0 = number of CPUs)":   "描画ワーカー数（0 = CPU数）",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"Error: %s":                   "エラー: %s",
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Conversion Summary":      "変換サマリー",
		"Generated":               "生成日時",
		"Version":                 "バージョン",
		"Source":                  "入力",
		"Bag":                     "bag",
		"Topic":                   "トピック",
		"Connection":              "コネクション",
		"Message Type":            "メッセージ型",
		"Messages":                "メッセージ数",
		"Duration":                "長さ",
		"Framerate":               "フレームレート",
		"Frames":                  "フレーム",
		"Buffered":                "バッファ済み",
		"Skipped":                 "スキップ",
		"Annotations":             "アノテーション",
		"Table":                   "表",
		"Table could not be used": "表を使用できませんでした",
		"Boxes":                   "ボックス数",
		"Frames with Boxes":       "ボックスのあるフレーム",
		"Burned In":               "描画済みフレーム",
		"Video":                   "動画",
		"Codec":                   "コーデック",
		"fallback from":           "フォールバック元",
		"Backend":                 "バックエンド",
		"Size":                    "サイズ",
		"File Size":               "ファイルサイズ",
	})
}
